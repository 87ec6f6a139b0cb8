package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"vouch/internal/platform/config"
)

// KafkaSink forwards audit events to a Kafka topic so downstream consumers
// (compliance export, analytics) can read the trail without touching the
// service database.
type KafkaSink struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaSink connects to the configured brokers.
// Returns nil if no brokers are configured.
func NewKafkaSink(cfg config.KafkaConfig, logger *slog.Logger) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.AuditTopic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}

	return &KafkaSink{client: client, topic: cfg.AuditTopic, logger: logger}, nil
}

// Publish produces the event asynchronously. Broker failures are logged,
// never returned: the audit trail must not block or fail the user action
// that produced it.
func (s *KafkaSink) Publish(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal audit event", "error", err, "action", event.Action)
		return
	}

	record := &kgo.Record{
		Key:   []byte(event.UserID.String()),
		Value: payload,
	}
	s.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			s.logger.Error("produce audit event",
				"error", err,
				"topic", s.topic,
				"action", event.Action,
			)
		}
	})
}

// Close flushes buffered records and releases the client.
func (s *KafkaSink) Close() {
	s.client.Close()
}
