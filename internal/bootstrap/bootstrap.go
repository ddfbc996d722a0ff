// Package bootstrap builds the collaborators shared by the binaries from
// a loaded Config.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/adapter/geocache"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/adapter/kafka"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/adapter/llm"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/adapter/mapbox"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/adapter/nominatim"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/adapter/sqlite"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/classify"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/config"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/domain"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/observability"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

// OpenStore opens the database and runs the idempotent migration.
func OpenStore(ctx context.Context, cfg *config.Config) (*sqlite.Store, error) {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("migrate %s: %w", cfg.DBPath, err)
	}
	return store, nil
}

// NewGeocoder returns the configured backend wrapped in the LRU cache, or
// nil when geocoding is off.
func NewGeocoder(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) domain.Geocoder {
	var inner domain.Geocoder
	switch cfg.Geocoder {
	case config.GeocoderMapbox:
		inner = mapbox.NewClient(cfg.MapboxToken, cfg.GeocoderCountryCode, cfg.GeocoderTimeout, logger, metrics)
	case config.GeocoderNominatim:
		inner = nominatim.NewClient(cfg.NominatimBaseURL, cfg.NominatimUserAgent, cfg.GeocoderCountryCode, cfg.GeocoderTimeout, logger, metrics)
	default:
		metrics.GeocodeEnabled.Set(0)
		logger.Info("geocoding disabled")
		return nil
	}
	metrics.GeocodeEnabled.Set(1)
	logger.Info("geocoding enabled", "provider", cfg.Geocoder, "cache_size", cfg.GeocoderCacheSize, "timeout", cfg.GeocoderTimeout)
	return geocache.NewCachedGeocoder(inner, cfg.GeocoderCacheSize, metrics)
}

// NewClassifier returns an LLM-backed classifier, or a keyword-only one
// when no API key is configured.
func NewClassifier(cfg *config.Config, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *classify.Classifier {
	retry := classify.RetryPolicy{MaxAttempts: cfg.LLMMaxAttempts, Delay: cfg.LLMRetryDelay, Clock: clock}
	if !cfg.LLMEnabled() {
		logger.Warn("no LLM API key configured, using keyword classification only")
		return classify.New(nil, retry, logger, metrics)
	}
	logger.Info("llm classification enabled", "model", cfg.LLMModel, "max_attempts", cfg.LLMMaxAttempts)
	return classify.New(llm.NewClient(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel, cfg.LLMTimeout), retry, logger, metrics)
}

// Ingestion is an Ingestor plus the resources it holds open.
type Ingestion struct {
	*pipeline.Ingestor
	writer *kafka.Writer
}

// Close flushes and closes the Kafka writer, if any.
func (i *Ingestion) Close() error {
	if i.writer == nil {
		return nil
	}
	return i.writer.Close()
}

// NewIngestion wires an Ingestor over store with the configured
// classifier, geocoder and optional Kafka publisher.
func NewIngestion(cfg *config.Config, store *sqlite.Store, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, opts pipeline.Options) *Ingestion {
	deps := pipeline.IngestorDeps{
		Classifier: NewClassifier(cfg, clock, logger, metrics),
		Store:      store,
		Locations:  store,
		Geocoder:   NewGeocoder(cfg, logger, metrics),
		Clock:      clock,
		Logger:     logger,
		Metrics:    metrics,
	}
	ing := &Ingestion{}
	if cfg.KafkaEnabled {
		ing.writer = kafka.NewWriter(cfg, logger)
		deps.Publisher = ing.writer
		logger.Info("publishing stored reports", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}
	ing.Ingestor = pipeline.NewIngestor(deps, opts)
	return ing
}
