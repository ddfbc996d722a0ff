package classify

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// RetryPolicy runs an operation up to MaxAttempts times with a fixed Delay
// between attempts.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Clock       clockwork.Clock
}

// Do calls fn until it succeeds, the attempts run out or ctx is done. The
// returned error wraps both ErrRetriesExhausted and the last failure.
func (p RetryPolicy) Do(ctx context.Context, fn func(context.Context) error) error {
	attempts := max(p.MaxAttempts, 1)
	clock := p.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	var lastErr error
	for i := range attempts {
		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("attempt %d: %w", i+1, ctx.Err())
		}
		if i == attempts-1 || p.Delay <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("attempt %d: %w", i+1, ctx.Err())
		case <-clock.After(p.Delay):
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempts, lastErr)
}
