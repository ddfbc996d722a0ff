package bootstrap

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/adapter/geocache"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/classify"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/config"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/domain"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/observability"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeocoder(t *testing.T) {
	tests := []struct {
		backend string
		enabled bool
	}{
		{config.GeocoderNominatim, true},
		{config.GeocoderMapbox, true},
		{config.GeocoderNone, false},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			metrics := observability.NewMetricsForTesting()
			cfg := &config.Config{Geocoder: tt.backend, MapboxToken: "pk.test", GeocoderCacheSize: 10}

			g := NewGeocoder(cfg, slog.Default(), metrics)

			if tt.enabled {
				assert.IsType(t, &geocache.CachedGeocoder{}, g)
				assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeEnabled), 0)
			} else {
				assert.Nil(t, g)
				assert.InDelta(t, 0, testutil.ToFloat64(metrics.GeocodeEnabled), 0)
			}
		})
	}
}

func TestNewClassifier_WithoutKeyFallsBack(t *testing.T) {
	c := NewClassifier(&config.Config{LLMMaxAttempts: 3}, clockwork.NewFakeClock(), slog.Default(), observability.NewMetricsForTesting())

	res := c.Classify(context.Background(), "Gang attack reported in Delmas overnight", "reports")

	assert.Equal(t, classify.SourceFallback, res.Source)
	assert.Equal(t, domain.EventViolence, res.EventType)
}

func TestNewIngestion_EndToEnd(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "reports.db"), Geocoder: config.GeocoderNone}
	store, err := OpenStore(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ing := NewIngestion(cfg, store, clockwork.NewFakeClock(), slog.Default(), observability.NewMetricsForTesting(), pipeline.Options{})
	t.Cleanup(func() { _ = ing.Close() })

	res := ing.Ingest(ctx, domain.RawDocument{Body: "Gang attack reported in Delmas overnight"})

	require.Equal(t, pipeline.OutcomeStored, res.Outcome)
	require.NotNil(t, res.Report.Geo, "Delmas is in the seeded hierarchy")
	assert.Equal(t, domain.GeoSourceHierarchy, res.Report.Metadata.GeoSource)
	n, err := store.CountReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
