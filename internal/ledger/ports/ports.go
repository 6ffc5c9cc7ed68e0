// Package ports defines the interfaces the ledger engine depends on.
// Interfaces live here, away from their implementations, so the service can
// be wired against in-memory stores in tests and Postgres in production
// without touching domain logic.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks EventPublisher

import (
	"context"

	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/events"
	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/models"
	"github.com/trackback-blockchain/plug-blockchain/pkg/domain"
)

// AssetStore persists per-asset registry records and the auto-assignment
// counter. Get returns sentinel.ErrNotFound (wrapped or not) for unknown
// assets.
type AssetStore interface {
	// Get retrieves one asset record.
	Get(ctx context.Context, id domain.AssetID) (models.Asset, error)

	// Put creates or replaces an asset record.
	Put(ctx context.Context, asset models.Asset) error

	// Exists reports whether an asset record is present.
	Exists(ctx context.Context, id domain.AssetID) (bool, error)

	// NextID returns the current auto-assignment counter.
	NextID(ctx context.Context) (domain.AssetID, error)

	// SetNextID overwrites the auto-assignment counter. The engine only
	// ever moves it forward.
	SetNextID(ctx context.Context, id domain.AssetID) error
}

// BalanceStore persists free and reserved balances keyed by (asset,
// account). A missing record reads as zero; records are created implicitly
// on first write and never deleted.
type BalanceStore interface {
	// Get retrieves the balance record, zero-valued if absent.
	Get(ctx context.Context, asset domain.AssetID, account domain.AccountID) (models.BalanceRecord, error)

	// SetFree overwrites the free balance.
	SetFree(ctx context.Context, asset domain.AssetID, account domain.AccountID, amount domain.Balance) error

	// SetReserved overwrites the reserved balance.
	SetReserved(ctx context.Context, asset domain.AssetID, account domain.AccountID, amount domain.Balance) error
}

// Atomic runs a mutation closure as a single unit: either every write in fn
// lands or none do. Implementations: a process-wide mutex for the in-memory
// stores (the ledger is single-writer), a sql.Tx threaded through context
// for Postgres.
type Atomic interface {
	Atomically(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher emits ledger notifications. Publishing is best-effort for
// the engine: a failed emit is logged, never rolled back into the ledger.
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event) error
}
