// Package kafka publishes stored reports to a Kafka topic for downstream
// consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/config"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces report messages to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured reports topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		WriteTimeout: 10 * time.Second,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes one stored report and writes it synchronously.
func (w *Writer) Publish(ctx context.Context, report domain.Report) error {
	msg, err := serializeToMessage(report)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish report %d: %w", report.ID, err)
	}
	w.logger.Debug("report published", "id", report.ID, "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Report into a Kafka message keyed by its
// URL, or by its id when it has none, so re-publishes land on one partition.
func serializeToMessage(report domain.Report) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize report: %w", err)
	}
	key := report.URL
	if key == "" {
		key = strconv.FormatInt(report.ID, 10)
	}
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(report.EventType)},
			{Key: "content_type", Value: []byte(report.ContentType)},
			{Key: "ingested_at", Value: []byte(report.Timestamp.UTC().Format(time.RFC3339))},
		},
	}, nil
}
