package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/domain"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/observability"
	"github.com/jonboulle/clockwork"
)

// skippedContentType is never harvested; disaster entries are not conflict
// reporting.
const skippedContentType = "disasters"

// Fetcher returns recent documents of one ReliefWeb content type.
type Fetcher interface {
	Fetch(ctx context.Context, contentType string, limit int) ([]domain.RawDocument, error)
}

// HarvestConfig controls a Harvester.
type HarvestConfig struct {
	ContentTypes []string
	Limit        int
	// Interval between passes in Run. Zero runs a single pass.
	Interval time.Duration
	// RequestDelay is slept between documents to stay polite to the LLM
	// and geocoding providers.
	RequestDelay time.Duration
}

// TypeStats summarizes one content type in one pass.
type TypeStats struct {
	ContentType string `json:"content_type"`
	Total       int    `json:"total"`
	Stored      int    `json:"stored"`
	Duplicates  int    `json:"duplicates"`
	Dropped     int    `json:"dropped"`
	Failed      int    `json:"failed"`
	// Classified counts documents that passed the filters with an event
	// type other than "other".
	Classified int `json:"classified"`
	Located    int `json:"located"`
	// Eligible counts processed documents that are conflict related.
	// Documents skipped as duplicates or too short are not counted.
	Eligible int  `json:"eligible"`
	FetchErr bool `json:"fetch_error,omitempty"`
}

// HarvestStats is the result of one pass.
type HarvestStats struct {
	Types []TypeStats `json:"types"`
}

// Stored sums stored reports across content types.
func (s HarvestStats) Stored() int {
	var n int
	for _, t := range s.Types {
		n += t.Stored
	}
	return n
}

// Harvester polls ReliefWeb and runs each document through an Ingestor.
type Harvester struct {
	fetcher  Fetcher
	ingestor *Ingestor
	cfg      HarvestConfig
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool
}

// NewHarvester creates a Harvester.
func NewHarvester(f Fetcher, in *Ingestor, cfg HarvestConfig, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Harvester {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Harvester{
		fetcher:  f,
		ingestor: in,
		cfg:      cfg,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// CheckReadiness returns nil once a full pass has completed.
func (h *Harvester) CheckReadiness(_ context.Context) error {
	if !h.ready.Load() {
		return errors.New("harvester has not completed a pass yet")
	}
	return nil
}

// Run executes harvest passes until ctx is cancelled, or exactly one when
// no interval is configured.
func (h *Harvester) Run(ctx context.Context) error {
	h.logger.Info("harvester started", "content_types", h.cfg.ContentTypes, "interval", h.cfg.Interval)
	for {
		stats := h.RunOnce(ctx)
		if ctx.Err() != nil {
			h.logger.Info("harvester stopping", "reason", ctx.Err())
			return nil
		}
		h.logger.Info("harvest pass complete", "stored", stats.Stored())

		if h.cfg.Interval <= 0 {
			return nil
		}
		if !sleepWithContext(ctx, h.clock, h.cfg.Interval) {
			h.logger.Info("harvester stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// RunOnce harvests every configured content type once, sequentially.
func (h *Harvester) RunOnce(ctx context.Context) HarvestStats {
	h.metrics.HarvestRunning.Set(1)
	defer h.metrics.HarvestRunning.Set(0)
	start := h.clock.Now()

	var stats HarvestStats
	for _, ct := range h.cfg.ContentTypes {
		if ct == skippedContentType {
			h.logger.Debug("content type skipped", "content_type", ct)
			continue
		}
		if ctx.Err() != nil {
			return stats
		}
		stats.Types = append(stats.Types, h.harvestType(ctx, ct))
	}

	h.metrics.HarvestDuration.Observe(h.clock.Since(start).Seconds())
	if ctx.Err() == nil {
		h.ready.Store(true)
	}
	return stats
}

func (h *Harvester) harvestType(ctx context.Context, contentType string) TypeStats {
	ts := TypeStats{ContentType: contentType}
	docs, err := h.fetcher.Fetch(ctx, contentType, h.cfg.Limit)
	if err != nil {
		h.logger.Error("fetch failed", "content_type", contentType, "error", err)
		ts.FetchErr = true
		return ts
	}
	ts.Total = len(docs)

	for i, doc := range docs {
		if i > 0 && !sleepWithContext(ctx, h.clock, h.cfg.RequestDelay) {
			return ts
		}
		ts.record(h.ingestor.Ingest(ctx, doc))
	}

	h.logger.Info("content type harvested",
		"content_type", contentType,
		"total", ts.Total,
		"stored", ts.Stored,
		"duplicates", ts.Duplicates,
		"dropped", ts.Dropped,
		"failed", ts.Failed,
	)
	return ts
}

func (ts *TypeStats) record(res Result) {
	if res.Report.RawText != "" && domain.IsConflictRelated(res.Report.EventType, res.Report.RawText) {
		ts.Eligible++
	}
	switch res.Outcome {
	case OutcomeStored:
		ts.Stored++
	case OutcomeDuplicate:
		ts.Duplicates++
		return
	case OutcomeDropped:
		ts.Dropped++
		return
	case OutcomeFailed:
		ts.Failed++
		if res.Report.RawText == "" {
			return
		}
	}
	if res.Report.EventType != domain.EventOther {
		ts.Classified++
	}
	if res.Report.LocationText != "" {
		ts.Located++
	}
}

func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-clock.After(d):
		return true
	}
}
