package classify

import "github.com/couchcryptid/haiti-crisis-monitor/internal/domain"

// Fallback classifies text with keyword rules and the gazetteer.
func Fallback(text, reason string) Result {
	eventType := domain.EventOther
	switch {
	case domain.ContainsKeyword(text, domain.ConflictKeywords):
		eventType = domain.EventViolence
	case domain.ContainsKeyword(text, domain.DisasterKeywords):
		eventType = domain.EventNaturalDisaster
	}

	var location string
	if m, ok := domain.FindPlace(text); ok {
		location = m.Place.Canonical
	}

	return Result{
		EventType: eventType,
		Location:  location,
		Severity:  domain.DefaultSeverity,
		Source:    SourceFallback,
		Reason:    reason,
	}
}
