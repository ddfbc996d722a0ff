package classify

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/domain"
)

var (
	fencePattern  = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")
	objectPattern = regexp.MustCompile(`(?s)\{.*\}`)
)

// ParseResponse normalizes a raw model reply into a Result. It strips
// Markdown fences, accepts an object or an array whose first element is an
// object, falls back to the first {...} block when the JSON is wrapped in
// prose, takes the first element of list-valued fields and replaces any
// severity that is not an integer in [1,5] with the default.
func ParseResponse(raw string) (Result, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Result{}, fmt.Errorf("%w: empty reply", ErrMalformedResponse)
	}
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	v, err := decode(text)
	if err != nil {
		block := objectPattern.FindString(text)
		if block == "" {
			return Result{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
		if v, err = decode(block); err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
	}

	obj, err := asObject(v)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		EventType: strings.TrimSpace(stringField(obj["event_type"])),
		Location:  strings.TrimSpace(stringField(obj["location"])),
		Severity:  severityField(obj["severity"]),
		Source:    SourceLLM,
	}
	if res.EventType == "" {
		res.EventType = domain.EventOther
	}

	lat, latOK := floatField(firstOf(obj, "latitude", "lat"))
	lon, lonOK := floatField(firstOf(obj, "longitude", "lon"))
	if latOK && lonOK {
		if g := (domain.Geo{Lat: lat, Lon: lon}); g.Valid() {
			res.Geo = &g
		}
	}
	return res, nil
}

func decode(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func asObject(v any) (map[string]any, error) {
	switch t := v.(type) {
	case map[string]any:
		return t, nil
	case []any:
		if len(t) == 0 {
			return nil, fmt.Errorf("%w: empty array", ErrMalformedResponse)
		}
		if obj, ok := t[0].(map[string]any); ok {
			return obj, nil
		}
		return nil, fmt.Errorf("%w: array of %T", ErrMalformedResponse, t[0])
	default:
		return nil, fmt.Errorf("%w: unexpected %T", ErrMalformedResponse, v)
	}
}

func firstOf(obj map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			return v
		}
	}
	return nil
}

// first unwraps list values to their first element.
func first(v any) any {
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil
		}
		return list[0]
	}
	return v
}

func stringField(v any) string {
	s, _ := first(v).(string)
	return s
}

func severityField(v any) int {
	n, ok := first(v).(json.Number)
	if !ok {
		return domain.DefaultSeverity
	}
	i, err := n.Int64()
	if err != nil {
		return domain.DefaultSeverity
	}
	return domain.ClampSeverity(int(i))
}

func floatField(v any) (float64, bool) {
	switch t := first(v).(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := json.Number(strings.TrimSpace(t)).Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
