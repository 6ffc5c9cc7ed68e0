package events

import (
	"context"
	"log/slog"
)

// Sink is the downstream consumer a Dispatcher drains into.
type Sink interface {
	Emit(ctx context.Context, event Event) error
}

// Dispatcher decouples event emission from delivery. Emit never blocks a
// ledger operation: events go into a buffered inbox and a background Run
// loop hands them to the sink. A full inbox drops the event with a log
// line; ledger state is the source of truth, events are advisory.
type Dispatcher struct {
	inbox  chan Event
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher with the given inbox capacity.
func NewDispatcher(buffer int, logger *slog.Logger) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Dispatcher{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

// Emit enqueues the event, dropping it if the inbox is full.
func (d *Dispatcher) Emit(ctx context.Context, event Event) error {
	select {
	case d.inbox <- event:
	default:
		d.logger.WarnContext(ctx, "event inbox full, dropping event",
			"type", event.Type,
			"asset_id", event.AssetID,
		)
	}
	return nil
}

// Run drains the inbox into the sink until ctx is cancelled. Delivery
// failures are logged and the loop keeps going.
func (d *Dispatcher) Run(ctx context.Context, sink Sink) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-d.inbox:
			if err := sink.Emit(ctx, event); err != nil {
				d.logger.ErrorContext(ctx, "event delivery failed",
					"type", event.Type,
					"asset_id", event.AssetID,
					"event_id", event.ID,
					"error", err,
				)
			}
		}
	}
}
