package analytics_test

import (
	"testing"
	"time"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/analytics"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func report(eventType, location string, severity int, created string, ts time.Time) domain.Report {
	return domain.Report{
		EventType:    eventType,
		LocationText: location,
		Severity:     severity,
		CreatedDate:  created,
		Timestamp:    ts,
		SourceName:   "OCHA",
	}
}

func fixture() []domain.Report {
	ts := date(2024, 5, 1, 12)
	return []domain.Report{
		report("violence", "Martissant", 5, "2024-04-01T08:00:00Z", ts),
		report("kidnapping", "Martissant", 4, "2024-04-02T09:00:00Z", ts),
		report("aid_needed", "Jacmel", 2, "2024-04-10T10:00:00Z", ts),
		report("protest", "Delmas", 3, "", date(2024, 4, 15, 14)),
		report("natural_disaster", "", 3, "not a date", date(2024, 3, 20, 6)),
	}
}

func TestApply_NoFiltersKeepsEverything(t *testing.T) {
	rs := fixture()
	got := analytics.Apply(rs, analytics.Filter{SeverityMin: 1, SeverityMax: 5})
	assert.Len(t, got, len(rs))

	s := analytics.Summarize(got)
	assert.Equal(t, len(rs), s.TotalIncidents)
	assert.InDelta(t, 3.4, s.AvgSeverity, 1e-9)
}

func TestApply_Predicates(t *testing.T) {
	rs := fixture()
	tests := []struct {
		name   string
		filter analytics.Filter
		want   []string
	}{
		{"event types", analytics.Filter{EventTypes: []string{"violence", "protest"}}, []string{"violence", "protest"}},
		{"severity range", analytics.Filter{SeverityMin: 4, SeverityMax: 5}, []string{"violence", "kidnapping"}},
		{"locations", analytics.Filter{Locations: []string{"Martissant"}}, []string{"violence", "kidnapping"}},
		{"conflict only", analytics.Filter{ConflictOnly: true}, []string{"violence", "kidnapping", "protest"}},
		{"composed", analytics.Filter{ConflictOnly: true, SeverityMax: 4}, []string{"kidnapping", "protest"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, r := range analytics.Apply(rs, tt.filter) {
				got = append(got, r.EventType)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply_DateRangeIsEndInclusive(t *testing.T) {
	rs := fixture()
	f := analytics.Filter{Start: date(2024, 4, 2, 0), End: date(2024, 4, 15, 0)}

	got := analytics.Apply(rs, f)

	require.Len(t, got, 3)
	for _, r := range got {
		d := r.EffectiveDate()
		assert.False(t, d.Before(f.Start), "%s before start", d)
		assert.True(t, d.Before(f.End.AddDate(0, 0, 1)), "%s after end", d)
	}
	// The protest has no created_date and is placed by its timestamp.
	assert.Equal(t, "protest", got[2].EventType)
}

func TestSummarize(t *testing.T) {
	s := analytics.Summarize(fixture())
	assert.Equal(t, analytics.Summary{TotalIncidents: 5, UniqueLocations: 3, AvgSeverity: 3.4, Sources: 1}, s)

	assert.Equal(t, analytics.Summary{}, analytics.Summarize(nil))
}

func TestSummarize_RoundsToTwoDecimals(t *testing.T) {
	rs := []domain.Report{{Severity: 1}, {Severity: 1}, {Severity: 2}}
	assert.InDelta(t, 1.33, analytics.Summarize(rs).AvgSeverity, 1e-9)
}

func TestMonthlyCounts(t *testing.T) {
	got := analytics.MonthlyCounts(fixture())
	want := []analytics.PeriodCount{
		{Period: date(2024, 3, 1, 0), Count: 1},
		{Period: date(2024, 4, 1, 0), Count: 4},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("monthly counts mismatch (-want +got):\n%s", diff)
	}
}

func TestWeeklyCounts_MondayStartAndLimit(t *testing.T) {
	var rs []domain.Report
	// 2024-01-01 is a Monday; one report on each Wednesday for ten weeks.
	for w := range 10 {
		d := date(2024, 1, 3, 0).AddDate(0, 0, 7*w)
		rs = append(rs, domain.Report{CreatedDate: d.Format(time.RFC3339)})
	}

	got := analytics.WeeklyCounts(rs, 7)

	require.Len(t, got, 7)
	assert.Equal(t, date(2024, 1, 22, 0), got[0].Period)
	for _, p := range got {
		assert.Equal(t, time.Monday, p.Period.Weekday())
		assert.Equal(t, 1, p.Count)
	}
}

func TestEventTypeShare(t *testing.T) {
	rs := append(fixture(), report("violence", "Delmas", 3, "2024-04-20", date(2024, 5, 1, 0)))
	got := analytics.EventTypeShare(rs)

	require.NotEmpty(t, got)
	assert.Equal(t, analytics.TypeShare{EventType: "violence", Count: 2, Percent: 33.33}, got[0])
	assert.Equal(t, "aid_needed", got[1].EventType, "ties sort by name")
}

func TestSeverityHistogram(t *testing.T) {
	got := analytics.SeverityHistogram(fixture())
	assert.Equal(t, []analytics.SeverityCount{
		{Severity: 1, Count: 0},
		{Severity: 2, Count: 1},
		{Severity: 3, Count: 2},
		{Severity: 4, Count: 1},
		{Severity: 5, Count: 1},
	}, got)
}

func TestTopLocations(t *testing.T) {
	got := analytics.TopLocations(fixture(), 2)
	assert.Equal(t, []analytics.LocationCount{
		{Location: "Martissant", Incidents: 2, Critical: 2},
		{Location: "Delmas", Incidents: 1, Critical: 0},
	}, got)
}

func TestDayHourHeatmap(t *testing.T) {
	h := analytics.DayHourHeatmap(fixture())

	assert.Equal(t, "Monday", h.Days[0])
	// 2024-04-01 08:00 is a Monday.
	assert.Equal(t, 1, h.Counts[0][8])
	// 2024-04-15 14:00 timestamp, also a Monday.
	assert.Equal(t, 1, h.Counts[0][14])
	var total int
	for _, row := range h.Counts {
		for _, n := range row {
			total += n
		}
	}
	assert.Equal(t, 5, total)
}

func TestForecast(t *testing.T) {
	rs := []domain.Report{
		{CreatedDate: "2024-04-01"},
		{CreatedDate: "2024-04-01"},
		{CreatedDate: "2024-04-03"},
	}

	got := analytics.Forecast(rs, 7, 30)

	require.Len(t, got, 3+30)
	assert.Equal(t, []int{2, 0, 1}, []int{got[0].Count, got[1].Count, got[2].Count})
	assert.InDelta(t, 2.0, got[0].MovingAverage, 1e-9)
	assert.InDelta(t, 1.0, got[2].MovingAverage, 1e-9)
	for _, p := range got[3:] {
		assert.True(t, p.Projected)
		assert.InDelta(t, 1.0, p.MovingAverage, 1e-9)
	}
	assert.Equal(t, date(2024, 5, 3, 0), got[len(got)-1].Date)

	assert.Nil(t, analytics.Forecast(nil, 7, 30))
}

func TestForecast_WindowSlides(t *testing.T) {
	var rs []domain.Report
	for d := 1; d <= 8; d++ {
		rs = append(rs, domain.Report{CreatedDate: date(2024, 4, d, 0).Format(time.RFC3339)})
	}
	rs = append(rs, domain.Report{CreatedDate: "2024-04-08"})

	got := analytics.Forecast(rs, 7, 0)

	require.Len(t, got, 8)
	// Days 2..8 with counts 1,1,1,1,1,1,2.
	assert.InDelta(t, 8.0/7.0, got[7].MovingAverage, 0.01)
}

func TestMapPoints(t *testing.T) {
	rs := fixture()
	rs[0].Geo = &domain.Geo{Lat: 18.5089, Lon: -72.357}
	rs[1].Geo = &domain.Geo{}

	got := analytics.MapPoints(rs)

	require.Len(t, got, 1)
	assert.Equal(t, "Martissant", got[0].Location)
	assert.Equal(t, 5, got[0].Severity)
}

func TestFilterOptions(t *testing.T) {
	opts := analytics.FilterOptions(fixture(), date(2024, 6, 1, 0))

	assert.Equal(t, []string{"Delmas", "Jacmel", "Martissant"}, opts.Locations)
	assert.ElementsMatch(t, []string{"violence", "kidnapping", "aid_needed", "protest", "natural_disaster"}, opts.EventTypes)
	assert.Equal(t, date(2024, 3, 20, 0), opts.MinDate)
	assert.Equal(t, date(2024, 4, 15, 0), opts.MaxDate)
	assert.Equal(t, domain.ConflictEventTypes(), opts.ConflictEventTypes)
}

func TestFilterOptions_DefaultsToLast30Days(t *testing.T) {
	now := date(2024, 6, 1, 15)
	opts := analytics.FilterOptions([]domain.Report{{EventType: "other"}}, now)
	assert.Equal(t, date(2024, 5, 2, 0), opts.MinDate)
	assert.Equal(t, date(2024, 6, 1, 0), opts.MaxDate)
}
