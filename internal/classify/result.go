package classify

import (
	"errors"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/domain"
)

// Source tags where a Result came from.
type Source string

const (
	SourceLLM      Source = "llm"
	SourceFallback Source = "fallback"
)

var (
	// ErrMalformedResponse means the model reply held no usable JSON object.
	ErrMalformedResponse = errors.New("malformed classifier response")

	// ErrRetriesExhausted is returned once every attempt of a RetryPolicy failed.
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// Result is a classification outcome. Reason is set for fallback results.
type Result struct {
	EventType string      `json:"event_type"`
	Location  string      `json:"location"`
	Severity  int         `json:"severity"`
	Geo       *domain.Geo `json:"geo,omitempty"`
	Source    Source      `json:"source"`
	Reason    string      `json:"reason,omitempty"`
}
