package dashboard

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/analytics"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/domain"
)

const dateLayout = "2006-01-02"

type queryError struct {
	param string
	value string
}

func (e *queryError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.param, e.value)
}

// parseFilter reads the filter widgets from query parameters. Repeated
// event_type and location values are OR-ed; comma-separated values are
// split too.
func parseFilter(q url.Values) (analytics.Filter, error) {
	f := analytics.Filter{
		EventTypes: multi(q, "event_type"),
		Locations:  multi(q, "location"),
	}

	var err error
	if f.SeverityMin, err = severityParam(q, "severity_min", domain.MinSeverity); err != nil {
		return f, err
	}
	if f.SeverityMax, err = severityParam(q, "severity_max", domain.MaxSeverity); err != nil {
		return f, err
	}
	if f.SeverityMin > f.SeverityMax {
		return f, &queryError{param: "severity range", value: fmt.Sprintf("%d-%d", f.SeverityMin, f.SeverityMax)}
	}
	if v := q.Get("conflict_only"); v != "" {
		b, perr := strconv.ParseBool(v)
		if perr != nil {
			return f, &queryError{param: "conflict_only", value: v}
		}
		f.ConflictOnly = b
	}
	if f.Start, err = dateParam(q, "start"); err != nil {
		return f, err
	}
	if f.End, err = dateParam(q, "end"); err != nil {
		return f, err
	}
	if !f.Start.IsZero() && !f.End.IsZero() && f.End.Before(f.Start) {
		return f, &queryError{param: "date range", value: q.Get("start") + ".." + q.Get("end")}
	}
	return f, nil
}

func multi(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func severityParam(q url.Values, key string, def int) (int, error) {
	v := q.Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < domain.MinSeverity || n > domain.MaxSeverity {
		return 0, &queryError{param: key, value: v}
	}
	return n, nil
}

func dateParam(q url.Values, key string) (time.Time, error) {
	v := q.Get(key)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, &queryError{param: key, value: v}
	}
	return t, nil
}

func intParam(q url.Values, key string, def int) (int, error) {
	v := q.Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, &queryError{param: key, value: v}
	}
	return n, nil
}
