package analytics

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/domain"
)

// Summary holds the headline metrics.
type Summary struct {
	TotalIncidents  int     `json:"total_incidents"`
	UniqueLocations int     `json:"unique_locations"`
	AvgSeverity     float64 `json:"avg_severity"`
	Sources         int     `json:"sources"`
}

// Summarize computes the headline metrics. AvgSeverity is rounded to two
// decimals and is 0 for an empty set.
func Summarize(reports []domain.Report) Summary {
	s := Summary{TotalIncidents: len(reports)}
	if len(reports) == 0 {
		return s
	}
	locations := map[string]bool{}
	sources := map[string]bool{}
	var total int
	for _, r := range reports {
		total += r.Severity
		if r.LocationText != "" {
			locations[r.LocationText] = true
		}
		if r.SourceName != "" {
			sources[r.SourceName] = true
		}
	}
	s.UniqueLocations = len(locations)
	s.Sources = len(sources)
	s.AvgSeverity = round2(float64(total) / float64(len(reports)))
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// PeriodCount is the number of reports in a period starting at Period.
type PeriodCount struct {
	Period time.Time `json:"period"`
	Count  int       `json:"count"`
}

// MonthlyCounts groups reports by the calendar month of their effective date.
func MonthlyCounts(reports []domain.Report) []PeriodCount {
	return countBy(reports, func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	})
}

// WeeklyCounts groups reports by Monday-start week and keeps the latest
// weeks that have reports.
func WeeklyCounts(reports []domain.Report, weeks int) []PeriodCount {
	counts := countBy(reports, weekStart)
	if weeks > 0 && len(counts) > weeks {
		counts = counts[len(counts)-weeks:]
	}
	return counts
}

func weekStart(t time.Time) time.Time {
	d := day(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// DailyCounts groups reports by effective day.
func DailyCounts(reports []domain.Report) []PeriodCount {
	return countBy(reports, day)
}

func countBy(reports []domain.Report, bucket func(time.Time) time.Time) []PeriodCount {
	counts := map[time.Time]int{}
	for _, r := range reports {
		d := r.EffectiveDate()
		if d.IsZero() {
			continue
		}
		counts[bucket(d.UTC())]++
	}
	out := make([]PeriodCount, 0, len(counts))
	for p, n := range counts {
		out = append(out, PeriodCount{Period: p, Count: n})
	}
	slices.SortFunc(out, func(a, b PeriodCount) int { return a.Period.Compare(b.Period) })
	return out
}

// TypeShare is one slice of the event-type distribution.
type TypeShare struct {
	EventType string  `json:"event_type"`
	Count     int     `json:"count"`
	Percent   float64 `json:"percent"`
}

// EventTypeShare counts reports per event type, largest first.
func EventTypeShare(reports []domain.Report) []TypeShare {
	counts := map[string]int{}
	for _, r := range reports {
		counts[r.EventType]++
	}
	out := make([]TypeShare, 0, len(counts))
	for et, n := range counts {
		out = append(out, TypeShare{
			EventType: et,
			Count:     n,
			Percent:   round2(100 * float64(n) / float64(len(reports))),
		})
	}
	slices.SortFunc(out, func(a, b TypeShare) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.EventType, b.EventType))
	})
	return out
}

// SeverityCount is one bar of the severity histogram.
type SeverityCount struct {
	Severity int `json:"severity"`
	Count    int `json:"count"`
}

// SeverityHistogram returns one entry per severity level 1..5, zeros included.
func SeverityHistogram(reports []domain.Report) []SeverityCount {
	out := make([]SeverityCount, domain.MaxSeverity)
	for i := range out {
		out[i].Severity = i + domain.MinSeverity
	}
	for _, r := range reports {
		if r.Severity >= domain.MinSeverity && r.Severity <= domain.MaxSeverity {
			out[r.Severity-domain.MinSeverity].Count++
		}
	}
	return out
}

// LocationCount ranks a location by incidents.
type LocationCount struct {
	Location  string `json:"location"`
	Incidents int    `json:"incidents"`
	Critical  int    `json:"critical"`
}

// TopLocations returns the n locations with the most incidents, ties broken
// by critical count (severity >= 4) then name. Reports without a location
// are ignored. n <= 0 returns all.
func TopLocations(reports []domain.Report, n int) []LocationCount {
	byName := map[string]*LocationCount{}
	for _, r := range reports {
		if r.LocationText == "" {
			continue
		}
		lc, ok := byName[r.LocationText]
		if !ok {
			lc = &LocationCount{Location: r.LocationText}
			byName[r.LocationText] = lc
		}
		lc.Incidents++
		if r.Severity >= domain.CriticalSeverity {
			lc.Critical++
		}
	}
	out := make([]LocationCount, 0, len(byName))
	for _, lc := range byName {
		out = append(out, *lc)
	}
	slices.SortFunc(out, func(a, b LocationCount) int {
		return cmp.Or(
			cmp.Compare(b.Incidents, a.Incidents),
			cmp.Compare(b.Critical, a.Critical),
			cmp.Compare(a.Location, b.Location),
		)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Weekdays labels the heatmap rows.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Heatmap counts reports per weekday (Monday first) and hour of day.
type Heatmap struct {
	Days   []string   `json:"days"`
	Counts [7][24]int `json:"counts"`
}

// DayHourHeatmap buckets reports by the weekday and UTC hour of their
// effective date.
func DayHourHeatmap(reports []domain.Report) Heatmap {
	h := Heatmap{Days: Weekdays}
	for _, r := range reports {
		d := r.EffectiveDate()
		if d.IsZero() {
			continue
		}
		d = d.UTC()
		h.Counts[(int(d.Weekday())+6)%7][d.Hour()]++
	}
	return h
}

// MapPoint is one geolocated report.
type MapPoint struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Severity  int     `json:"severity"`
	Location  string  `json:"location"`
	EventType string  `json:"event_type"`
	Title     string  `json:"title"`
	Source    string  `json:"source"`
}

// MapPoints keeps the reports that have valid coordinates.
func MapPoints(reports []domain.Report) []MapPoint {
	out := make([]MapPoint, 0, len(reports))
	for _, r := range reports {
		if r.Geo == nil || !r.Geo.Valid() {
			continue
		}
		out = append(out, MapPoint{
			Lat:       r.Geo.Lat,
			Lon:       r.Geo.Lon,
			Severity:  r.Severity,
			Location:  r.LocationText,
			EventType: r.EventType,
			Title:     r.Title,
			Source:    r.SourceName,
		})
	}
	return out
}
