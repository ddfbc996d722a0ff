package pipeline_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/adapter/reliefweb"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/classify"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/domain"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/observability"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHarvester(t *testing.T, f pipeline.Fetcher, cfg pipeline.HarvestConfig, clock clockwork.Clock) (*pipeline.Harvester, *memStore, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	store := &memStore{}
	in := pipeline.NewIngestor(pipeline.IngestorDeps{
		Classifier: classify.New(nil, classify.RetryPolicy{}, slog.Default(), metrics),
		Store:      store,
		Clock:      clock,
		Logger:     slog.Default(),
		Metrics:    metrics,
	}, pipeline.Options{DomainFilter: true})
	return pipeline.NewHarvester(f, in, cfg, clock, slog.Default(), metrics), store, metrics
}

func TestHarvester_RunOnce_Stats(t *testing.T) {
	fetcher := &stubFetcher{docs: map[string][]domain.RawDocument{
		"reports": {
			{Title: "Gang attack", Body: kidnapText, ContentType: "reports", URL: "https://r/1"},
			{Title: "Earthquake aftermath", Body: "A strong earthquake shook the south department overnight", ContentType: "reports", URL: "https://r/2"},
			{Title: "short", ContentType: "reports", URL: "https://r/3"},
			{Title: "Gang attack", Body: kidnapText, ContentType: "reports", URL: "https://r/1"},
		},
		"blog": {
			{Title: "School reopening", Body: "Classes resumed at several schools after weeks of closure", ContentType: "blog", URL: "https://b/1"},
		},
	}}
	h, store, metrics := newHarvester(t, fetcher, pipeline.HarvestConfig{
		ContentTypes: []string{"reports", "disasters", "blog"},
		Limit:        20,
	}, clockwork.NewFakeClockAt(ingestTime))

	stats := h.RunOnce(context.Background())

	assert.Equal(t, []string{"reports", "blog"}, fetcher.seen, "disasters is never fetched")
	require.Len(t, stats.Types, 2)
	assert.Equal(t, pipeline.TypeStats{
		ContentType: "reports",
		Total:       4,
		Stored:      1,
		Duplicates:  1,
		Dropped:     2,
		Classified:  1,
		Located:     1,
		Eligible:    1,
	}, stats.Types[0])
	assert.Equal(t, 1, stats.Types[1].Stored)
	assert.Zero(t, stats.Types[1].Classified)
	assert.Equal(t, 2, stats.Stored())
	assert.Len(t, store.reports, 2)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.DocumentsIngested.WithLabelValues(string(pipeline.OutcomeStored))), 0)
	assert.NoError(t, h.CheckReadiness(context.Background()))
}

func TestHarvester_FetchErrorContinues(t *testing.T) {
	fetcher := &stubFetcher{
		errs: map[string]error{"reports": errBoom},
		docs: map[string][]domain.RawDocument{
			"blog": {{Body: kidnapText, ContentType: "blog"}},
		},
	}
	h, _, _ := newHarvester(t, fetcher, pipeline.HarvestConfig{ContentTypes: []string{"reports", "blog"}}, clockwork.NewFakeClock())

	stats := h.RunOnce(context.Background())

	require.Len(t, stats.Types, 2)
	assert.True(t, stats.Types[0].FetchErr)
	assert.Equal(t, 1, stats.Types[1].Stored)
}

func TestHarvester_ReliefWebMetricsCountedOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/blog" {
			http.Error(w, "upstream failure", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count":1,"data":[{"id":"9001","fields":{` +
			`"title":"Gang attack in Martissant",` +
			`"body":"Armed gangs kidnapped five people in Martissant on Monday morning",` +
			`"url_alias":"/report/haiti/gang-attack-martissant"}}]}`))
	}))
	defer srv.Close()

	metrics := observability.NewMetricsForTesting()
	clock := clockwork.NewFakeClockAt(ingestTime)
	in := pipeline.NewIngestor(pipeline.IngestorDeps{
		Classifier: classify.New(nil, classify.RetryPolicy{}, slog.Default(), metrics),
		Store:      &memStore{},
		Clock:      clock,
		Logger:     slog.Default(),
		Metrics:    metrics,
	}, pipeline.Options{DomainFilter: true})
	fetcher := reliefweb.NewClient(srv.URL, "haiti-crisis-test", 5*time.Second, slog.Default(), metrics)
	h := pipeline.NewHarvester(fetcher, in, pipeline.HarvestConfig{
		ContentTypes: []string{"reports", "blog"},
		Limit:        10,
	}, clock, slog.Default(), metrics)

	stats := h.RunOnce(context.Background())

	require.Len(t, stats.Types, 2)
	assert.Equal(t, 1, stats.Types[0].Stored)
	assert.True(t, stats.Types[1].FetchErr)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.DocumentsFetched.WithLabelValues("reports")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FetchErrors.WithLabelValues("blog")), 0)
	assert.Zero(t, testutil.ToFloat64(metrics.FetchErrors.WithLabelValues("reports")))
}

func TestHarvester_NotReadyBeforeFirstPass(t *testing.T) {
	h, _, _ := newHarvester(t, &stubFetcher{}, pipeline.HarvestConfig{ContentTypes: []string{"reports"}}, clockwork.NewFakeClock())
	assert.Error(t, h.CheckReadiness(context.Background()))
}

func TestHarvester_RequestDelayBetweenDocuments(t *testing.T) {
	fetcher := &stubFetcher{docs: map[string][]domain.RawDocument{
		"reports": {
			{Body: kidnapText, URL: "https://r/1"},
			{Body: kidnapText, URL: "https://r/2"},
		},
	}}
	clock := clockwork.NewFakeClock()
	h, store, _ := newHarvester(t, fetcher, pipeline.HarvestConfig{
		ContentTypes: []string{"reports"},
		RequestDelay: 300 * time.Millisecond,
	}, clock)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan pipeline.HarvestStats, 1)
	go func() { done <- h.RunOnce(ctx) }()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(300 * time.Millisecond)

	select {
	case stats := <-done:
		assert.Equal(t, 2, stats.Stored())
		assert.Len(t, store.reports, 2)
	case <-ctx.Done():
		t.Fatal("harvest did not finish after the delay elapsed")
	}
}

func TestHarvester_Run_SinglePassWithoutInterval(t *testing.T) {
	fetcher := &stubFetcher{docs: map[string][]domain.RawDocument{"reports": {{Body: kidnapText}}}}
	h, store, _ := newHarvester(t, fetcher, pipeline.HarvestConfig{ContentTypes: []string{"reports"}}, clockwork.NewFakeClock())

	require.NoError(t, h.Run(context.Background()))
	assert.Len(t, store.reports, 1)
	assert.Len(t, fetcher.seen, 1)
}

func TestHarvester_Run_RepeatsOnInterval(t *testing.T) {
	fetcher := &stubFetcher{}
	clock := clockwork.NewFakeClock()
	h, _, _ := newHarvester(t, fetcher, pipeline.HarvestConfig{
		ContentTypes: []string{"reports"},
		Interval:     time.Hour,
	}, clock)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	runCtx, stop := context.WithCancel(ctx)

	done := make(chan error, 1)
	go func() { done <- h.Run(runCtx) }()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Hour)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("harvester did not stop")
	}
	assert.Len(t, fetcher.seen, 2)
}
