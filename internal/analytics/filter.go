// Package analytics computes the dashboard's views over stored reports.
// Every function is pure: it reads a report slice and returns a new value.
package analytics

import (
	"slices"
	"time"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/domain"
)

// Filter selects reports. Zero-valued fields do not constrain.
type Filter struct {
	EventTypes   []string
	SeverityMin  int
	SeverityMax  int
	Locations    []string
	ConflictOnly bool
	// Start and End are calendar days; End is inclusive.
	Start time.Time
	End   time.Time
}

// Match reports whether r passes every predicate.
func (f Filter) Match(r domain.Report) bool {
	lo, hi := f.severityBounds()
	if r.Severity < lo || r.Severity > hi {
		return false
	}
	if len(f.EventTypes) > 0 && !slices.Contains(f.EventTypes, r.EventType) {
		return false
	}
	if len(f.Locations) > 0 && !slices.Contains(f.Locations, r.LocationText) {
		return false
	}
	if f.ConflictOnly && !r.IsConflict() {
		return false
	}
	if f.Start.IsZero() && f.End.IsZero() {
		return true
	}
	d := r.EffectiveDate()
	if d.IsZero() {
		return false
	}
	if !f.Start.IsZero() && d.Before(day(f.Start)) {
		return false
	}
	if !f.End.IsZero() && !d.Before(day(f.End).AddDate(0, 0, 1)) {
		return false
	}
	return true
}

func (f Filter) severityBounds() (int, int) {
	lo, hi := f.SeverityMin, f.SeverityMax
	if lo < domain.MinSeverity {
		lo = domain.MinSeverity
	}
	if hi == 0 || hi > domain.MaxSeverity {
		hi = domain.MaxSeverity
	}
	return lo, hi
}

// Apply returns the reports matching f, in their original order.
func Apply(reports []domain.Report, f Filter) []domain.Report {
	out := make([]domain.Report, 0, len(reports))
	for _, r := range reports {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Options lists the values the dashboard offers as filter choices.
type Options struct {
	EventTypes []string  `json:"event_types"`
	Locations  []string  `json:"locations"`
	MinDate    time.Time `json:"min_date"`
	MaxDate    time.Time `json:"max_date"`

	// ConflictEventTypes is the allow-list applied by conflict_only.
	ConflictEventTypes []string `json:"conflict_event_types"`
}

// FilterOptions collects distinct event types and locations and the
// effective date range. With no usable dates the range is the 30 days up
// to today.
func FilterOptions(reports []domain.Report, now time.Time) Options {
	opts := Options{ConflictEventTypes: domain.ConflictEventTypes()}
	events := map[string]bool{}
	locations := map[string]bool{}
	for _, r := range reports {
		if r.EventType != "" && !events[r.EventType] {
			events[r.EventType] = true
			opts.EventTypes = append(opts.EventTypes, r.EventType)
		}
		if r.LocationText != "" {
			locations[r.LocationText] = true
		}
		d := r.EffectiveDate()
		if d.IsZero() {
			continue
		}
		if opts.MinDate.IsZero() || d.Before(opts.MinDate) {
			opts.MinDate = d
		}
		if d.After(opts.MaxDate) {
			opts.MaxDate = d
		}
	}
	for loc := range locations {
		opts.Locations = append(opts.Locations, loc)
	}
	slices.Sort(opts.Locations)

	if opts.MaxDate.IsZero() {
		today := day(now)
		opts.MinDate, opts.MaxDate = today.AddDate(0, 0, -30), today
		return opts
	}
	opts.MinDate, opts.MaxDate = day(opts.MinDate), day(opts.MaxDate)
	return opts
}

// day truncates t to midnight UTC.
func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
