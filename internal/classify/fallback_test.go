package classify

import (
	"strings"
	"testing"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestFallback(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		event    string
		location string
	}{
		{"conflict keyword", "Gang members opened fire in Martissant", domain.EventViolence, "Martissant"},
		{"conflict wins over disaster", "Armed groups looted shelters after the hurricane", domain.EventViolence, ""},
		{"disaster keyword", "Flooding in Les Cayes destroyed crops", domain.EventNaturalDisaster, "Les Cayes"},
		{"nothing", "Annual vaccination campaign begins", domain.EventOther, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Fallback(tt.text, "test")
			assert.Equal(t, tt.event, res.EventType)
			assert.Equal(t, tt.location, res.Location)
			assert.Equal(t, domain.DefaultSeverity, res.Severity)
			assert.Equal(t, SourceFallback, res.Source)
			assert.Equal(t, "test", res.Reason)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("Shooting in Delmas", "reports")

	assert.Contains(t, p, "from reports")
	for _, et := range domain.EventTypes {
		assert.Contains(t, p, `"`+et.Name+`"`)
	}
	assert.Contains(t, p, `TEXT: "Shooting in Delmas"`)
	assert.True(t, strings.Contains(p, "1-5"))
}
