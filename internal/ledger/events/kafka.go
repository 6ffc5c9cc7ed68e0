package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/trackback-blockchain/plug-blockchain/internal/platform/kafka"
)

// KafkaPublisher serializes events as JSON and produces them keyed by
// asset id, so per-asset ordering survives partitioning.
type KafkaPublisher struct {
	producer *kafka.Producer
	logger   *slog.Logger
}

// NewKafkaPublisher wraps a connected producer.
func NewKafkaPublisher(producer *kafka.Producer, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, logger: logger}
}

// Emit publishes one event.
func (p *KafkaPublisher) Emit(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.Type, err)
	}
	return p.producer.Publish(ctx, []byte(event.AssetID.String()), value)
}
