// Package kafka wraps the franz-go producer used to ship audit events off the
// box. Kafka is the durable downstream for compliance events; the outbox table
// is the staging area, this publisher drains it.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"amlcase/internal/platform/config"
)

// Publisher produces records to a single topic with synchronous acks.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewPublisher connects to the configured brokers and ensures the audit topic
// exists. Returns nil if no brokers are configured (Kafka disabled; the outbox
// still records events for later draining).
func NewPublisher(cfg config.KafkaConfig, logger *slog.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.AuditTopic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := ensureTopic(context.Background(), client, cfg.AuditTopic); err != nil {
		client.Close()
		return nil, err
	}

	return &Publisher{client: client, topic: cfg.AuditTopic, logger: logger}, nil
}

// ensureTopic creates the topic if it does not exist yet. Already-exists is
// not an error: multiple instances race on startup.
func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	admin := kadm.NewClient(client)
	resp, err := admin.CreateTopics(ctx, 3, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %q: %w", topic, err)
	}
	for _, result := range resp {
		if result.Err != nil && !errors.Is(result.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %q: %w", topic, result.Err)
		}
	}
	return nil
}

// Publish produces one record keyed by aggregate ID so events for the same
// subject preserve order within a partition. Blocks until the broker acks.
func (p *Publisher) Publish(ctx context.Context, key string, payload []byte) error {
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(key),
		Value: payload,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %q: %w", p.topic, err)
	}
	return nil
}

// Close flushes buffered records and tears down the client.
func (p *Publisher) Close() {
	p.client.Close()
}
