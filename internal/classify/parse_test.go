package classify

import (
	"testing"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		event    string
		location string
		severity int
	}{
		{"plain object", `{"event_type":"violence","location":"Delmas","severity":4}`, "violence", "Delmas", 4},
		{"json fence", "```json\n{\"event_type\":\"kidnapping\",\"location\":\"Tabarre\",\"severity\":5}\n```", "kidnapping", "Tabarre", 5},
		{"bare fence", "```\n{\"event_type\":\"protest\",\"location\":\"\",\"severity\":2}\n```", "protest", "", 2},
		{"array of object", `[{"event_type":"looting","location":"Carrefour","severity":3}]`, "looting", "Carrefour", 3},
		{"prose around json", `Sure! Here is the result: {"event_type":"displacement","location":"Martissant","severity":4} Hope it helps.`, "displacement", "Martissant", 4},
		{"list fields", `{"event_type":["violence","kidnapping"],"location":["Bel Air","Delmas"],"severity":[5]}`, "violence", "Bel Air", 5},
		{"missing severity", `{"event_type":"violence","location":"Delmas"}`, "violence", "Delmas", domain.DefaultSeverity},
		{"float severity", `{"event_type":"violence","severity":4.0}`, "violence", "", domain.DefaultSeverity},
		{"string severity", `{"event_type":"violence","severity":"4"}`, "violence", "", domain.DefaultSeverity},
		{"out of range severity", `{"event_type":"violence","severity":9}`, "violence", "", domain.DefaultSeverity},
		{"zero severity", `{"event_type":"violence","severity":0}`, "violence", "", domain.DefaultSeverity},
		{"missing event type", `{"location":"Hinche","severity":2}`, domain.EventOther, "Hinche", 2},
		{"arbitrary event type kept", `{"event_type":"economic_crisis","severity":2}`, "economic_crisis", "", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParseResponse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.event, res.EventType)
			assert.Equal(t, tt.location, res.Location)
			assert.Equal(t, tt.severity, res.Severity)
			assert.Equal(t, SourceLLM, res.Source)
		})
	}
}

func TestParseResponse_Coordinates(t *testing.T) {
	res, err := ParseResponse(`{"event_type":"violence","location":"Delmas","severity":4,"latitude":18.5456,"longitude":-72.3084}`)
	require.NoError(t, err)
	require.NotNil(t, res.Geo)
	assert.InDelta(t, 18.5456, res.Geo.Lat, 1e-9)
	assert.InDelta(t, -72.3084, res.Geo.Lon, 1e-9)

	res, err = ParseResponse(`{"event_type":"violence","latitude":0,"longitude":0}`)
	require.NoError(t, err)
	assert.Nil(t, res.Geo)

	res, err = ParseResponse(`{"event_type":"violence","latitude":118.5,"longitude":-72.3}`)
	require.NoError(t, err)
	assert.Nil(t, res.Geo)
}

func TestParseResponse_Errors(t *testing.T) {
	for name, raw := range map[string]string{
		"empty":        "",
		"prose only":   "I cannot classify this report.",
		"empty array":  "[]",
		"array of str": `["violence"]`,
		"number":       "42",
		"broken json":  `{"event_type": "violence", "severity": `,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseResponse(raw)
			require.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestParseResponse_SeverityAlwaysInRange(t *testing.T) {
	for _, raw := range []string{
		`{"severity":-1}`, `{"severity":1}`, `{"severity":5}`, `{"severity":6}`,
		`{"severity":null}`, `{"severity":true}`, `{"severity":{}}`, `{"severity":[]}`,
	} {
		res, err := ParseResponse(raw)
		require.NoError(t, err, raw)
		assert.GreaterOrEqual(t, res.Severity, domain.MinSeverity, raw)
		assert.LessOrEqual(t, res.Severity, domain.MaxSeverity, raw)
	}
}
