// Package kafka wraps the franz-go producer with topic bootstrap and a
// circuit breaker so a dead broker degrades event delivery instead of
// stalling ledger operations.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/trackback-blockchain/plug-blockchain/pkg/platform/circuit"
	"github.com/trackback-blockchain/plug-blockchain/pkg/platform/sentinel"
)

// Producer publishes records to a single topic.
type Producer struct {
	client  *kgo.Client
	breaker *circuit.Breaker
	logger  *slog.Logger
	topic   string
}

// NewProducer connects to the brokers and ensures the topic exists.
func NewProducer(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*Producer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}

	return &Producer{
		client:  client,
		breaker: circuit.New("kafka-producer", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
		logger:  logger,
		topic:   topic,
	}, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	resps, err := adm.CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, resp := range resps.Sorted() {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}

// Publish synchronously produces one record. When the breaker is open the
// record is dropped and sentinel.ErrUnavailable returned; callers treat
// event delivery as best-effort.
func (p *Producer) Publish(ctx context.Context, key, value []byte) error {
	if p.breaker.IsOpen() {
		return sentinel.ErrUnavailable
	}

	record := &kgo.Record{Topic: p.topic, Key: key, Value: value}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		if _, change := p.breaker.RecordFailure(); change.Opened {
			p.logger.ErrorContext(ctx, "kafka circuit opened",
				"topic", p.topic,
				"error", err,
			)
		}
		return fmt.Errorf("produce to %s: %w", p.topic, err)
	}

	if _, change := p.breaker.RecordSuccess(); change.Closed {
		p.logger.InfoContext(ctx, "kafka circuit closed", "topic", p.topic)
	}
	return nil
}

// Close flushes and releases the underlying client.
func (p *Producer) Close() {
	p.client.Close()
}
