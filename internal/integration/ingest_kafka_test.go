//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/adapter/kafka"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/adapter/sqlite"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/classify"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/config"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/domain"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/observability"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/pipeline"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTopic = "haiti-reports-test"

// TestIngestPublishesStoredReport runs a document through the fallback
// classifier, a real SQLite store and the Kafka writer, then reads the
// published report back from the topic.
func TestIngestPublishesStoredReport(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.SeedHierarchy(ctx, domain.SeedHierarchy))

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	in := pipeline.NewIngestor(pipeline.IngestorDeps{
		Classifier: classify.New(nil, classify.RetryPolicy{}, discardLogger(), metrics),
		Store:      store,
		Locations:  store,
		Publisher:  writer,
		Clock:      clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC)),
		Logger:     discardLogger(),
		Metrics:    metrics,
	}, pipeline.Options{DomainFilter: true})

	res := in.Ingest(ctx, domain.RawDocument{
		Title:       "Gang violence in Cité Soleil",
		Body:        "Armed groups exchanged gunfire for hours, displacing hundreds of families.",
		SourceName:  "OCHA",
		ContentType: "reports",
		URL:         "https://reliefweb.int/report/haiti/integration",
	})
	require.Equal(t, pipeline.OutcomeStored, res.Outcome, "ingest error: %v", res.Err)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		StartOffset: kafkago.FirstOffset,
		MaxWait:     time.Second,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read published report")

	assert.Equal(t, "https://reliefweb.int/report/haiti/integration", string(msg.Key))
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, domain.EventViolence, headers["event_type"])
	assert.Equal(t, "2024-04-26T12:00:00Z", headers["ingested_at"])

	var published domain.Report
	require.NoError(t, json.Unmarshal(msg.Value, &published))
	assert.Equal(t, res.Report.ID, published.ID)
	assert.Equal(t, "Cité Soleil", published.LocationText)
	require.NotNil(t, published.Geo, "coordinates come from the seeded hierarchy")
	assert.InDelta(t, 18.5944, published.Geo.Lat, 1e-6)

	stored, err := store.ListReports(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, published.URL, stored[0].URL)

	dup := in.Ingest(ctx, domain.RawDocument{
		Title: "Gang violence in Cité Soleil",
		Body:  "Armed groups exchanged gunfire for hours, displacing hundreds of families.",
		URL:   "https://reliefweb.int/report/haiti/integration",
	})
	assert.Equal(t, pipeline.OutcomeDuplicate, dup.Outcome)
}
