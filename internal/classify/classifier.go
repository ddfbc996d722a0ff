package classify

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Completer sends a prompt to a language model and returns its raw reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Classifier classifies report text with an LLM, falling back to keyword
// rules on any failure.
type Classifier struct {
	completer Completer
	retry     RetryPolicy
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Classifier. Pass a nil completer to classify with keyword
// rules only.
func New(completer Completer, retry RetryPolicy, logger *slog.Logger, metrics *observability.Metrics) *Classifier {
	if retry.Clock == nil {
		retry.Clock = clockwork.NewRealClock()
	}
	return &Classifier{
		completer: completer,
		retry:     retry,
		clock:     retry.Clock,
		logger:    logger,
		metrics:   metrics,
	}
}

// Classify never fails: the Result's Source says whether the LLM answered.
func (c *Classifier) Classify(ctx context.Context, text, contentType string) Result {
	if c.completer == nil {
		return c.fallback(text, "llm disabled")
	}

	prompt := BuildPrompt(text, contentType)
	var res Result
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		start := c.clock.Now()
		reply, err := c.completer.Complete(ctx, prompt)
		c.metrics.LLMDuration.Observe(c.clock.Since(start).Seconds())
		if err != nil {
			c.metrics.LLMRequests.WithLabelValues("error").Inc()
			c.logger.Warn("llm request failed", "error", err)
			return err
		}
		parsed, err := ParseResponse(reply)
		if err != nil {
			c.metrics.LLMRequests.WithLabelValues("malformed").Inc()
			c.logger.Warn("llm reply unusable", "error", err)
			return err
		}
		c.metrics.LLMRequests.WithLabelValues("success").Inc()
		res = parsed
		return nil
	})
	if err != nil {
		c.logger.Warn("classification fell back to keywords", "error", err)
		return c.fallback(text, err.Error())
	}

	c.metrics.Classifications.WithLabelValues(string(SourceLLM)).Inc()
	return res
}

func (c *Classifier) fallback(text, reason string) Result {
	c.metrics.Classifications.WithLabelValues(string(SourceFallback)).Inc()
	return Fallback(text, reason)
}
