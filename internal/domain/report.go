package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Severity bounds and the neutral default used when a classifier gives no
// usable value.
const (
	MinSeverity     = 1
	MaxSeverity     = 5
	DefaultSeverity = 3

	// CriticalSeverity is the lowest severity counted as critical.
	CriticalSeverity = 4
)

// Defaults applied to manually entered documents.
const (
	DefaultSourceName  = "Manual Input"
	DefaultContentType = "manual"
)

// RawDocument is the input to ingestion: a flattened ReliefWeb item or a
// manually entered text.
type RawDocument struct {
	Title       string `json:"title,omitempty"`
	Body        string `json:"body,omitempty"`
	SourceName  string `json:"source_name,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	URL         string `json:"url,omitempty"`
	CreatedDate string `json:"created_date,omitempty"`
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the pair is inside WGS-84 bounds and not the 0,0
// placeholder some providers return for unknown places.
func (g Geo) Valid() bool {
	if g.Lat == 0 && g.Lon == 0 {
		return false
	}
	return g.Lat >= -90 && g.Lat <= 90 && g.Lon >= -180 && g.Lon <= 180
}

// String renders the pair in the legacy "lat,lon" form.
func (g Geo) String() string {
	return strconv.FormatFloat(g.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(g.Lon, 'f', -1, 64)
}

// ParseCoords parses a legacy "lat,lon" string.
func ParseCoords(s string) (Geo, bool) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return Geo{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return Geo{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return Geo{}, false
	}
	g := Geo{Lat: lat, Lon: lon}
	return g, g.Valid()
}

// Location precision levels recorded in LocationMetadata.
const (
	PrecisionHigh   = "high"
	PrecisionMedium = "medium"
	PrecisionLow    = "low"
)

// LocationMetadata describes how a report's location was resolved.
type LocationMetadata struct {
	Type      string `json:"type,omitempty"`
	Parent    string `json:"parent,omitempty"`
	Precision string `json:"precision"`
	GeoSource string `json:"geo_source,omitempty"` // "classifier", "hierarchy", "geocoder", "failed"
}

// Report is one stored, classified humanitarian report.
type Report struct {
	ID           int64            `json:"id"`
	Timestamp    time.Time        `json:"timestamp"`
	Title        string           `json:"title"`
	RawText      string           `json:"raw_text"`
	EventType    string           `json:"event_type"`
	LocationText string           `json:"location_text"`
	Geo          *Geo             `json:"geo,omitempty"`
	Metadata     LocationMetadata `json:"location_metadata"`
	SourceName   string           `json:"source_name"`
	ContentType  string           `json:"content_type"`
	Severity     int              `json:"severity"`
	URL          string           `json:"report_url,omitempty"`
	CreatedDate  string           `json:"created_date,omitempty"`
}

// LocationCoords returns the derived "lat,lon" column value, or "" when the
// report has no coordinates.
func (r Report) LocationCoords() string {
	if r.Geo == nil {
		return ""
	}
	return r.Geo.String()
}

// MetadataJSON encodes the location metadata for storage.
func (r Report) MetadataJSON() (string, error) {
	b, err := json.Marshal(r.Metadata)
	if err != nil {
		return "", fmt.Errorf("encode location metadata: %w", err)
	}
	return string(b), nil
}

// EffectiveDate is the publication date when parseable, otherwise the
// ingestion timestamp. The zero time means neither is usable.
func (r Report) EffectiveDate() time.Time {
	if t, ok := ParseTime(r.CreatedDate); ok {
		return t
	}
	return r.Timestamp.UTC()
}

// IsConflict reports whether the report's event type is on the conflict
// allow-list.
func (r Report) IsConflict() bool {
	return IsConflictEvent(r.EventType)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses the date formats seen in ReliefWeb payloads and legacy
// rows. Times without a zone are taken as UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// NormalizeDate returns s as RFC3339 UTC when parseable, s unchanged otherwise.
func NormalizeDate(s string) string {
	if t, ok := ParseTime(s); ok {
		return t.Format(time.RFC3339)
	}
	return strings.TrimSpace(s)
}

// ClampSeverity forces v into [MinSeverity, MaxSeverity], substituting
// DefaultSeverity for anything outside.
func ClampSeverity(v int) int {
	if v < MinSeverity || v > MaxSeverity {
		return DefaultSeverity
	}
	return v
}
