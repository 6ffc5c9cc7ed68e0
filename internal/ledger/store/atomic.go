// Package store holds the cross-store pieces of the persistence layer: the
// atomic execution units and the Postgres schema.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/trackback-blockchain/plug-blockchain/pkg/platform/tx"
)

// MutexAtomic serializes mutations with a process-wide lock. Paired with
// the in-memory stores it realizes the single-writer execution model: each
// operation runs to completion before the next begins.
type MutexAtomic struct {
	mu sync.Mutex
}

// NewMutexAtomic creates the lock-based unit.
func NewMutexAtomic() *MutexAtomic {
	return &MutexAtomic{}
}

// Atomically runs fn while holding the lock.
func (a *MutexAtomic) Atomically(ctx context.Context, fn func(ctx context.Context) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return fn(ctx)
}

// SQLAtomic runs mutations inside a database transaction threaded through
// context; the Postgres stores pick it up via pkg/platform/tx. An error
// from fn rolls everything back, so a failed precondition leaves storage
// untouched.
type SQLAtomic struct {
	db *sql.DB
}

// NewSQLAtomic wraps a database handle.
func NewSQLAtomic(db *sql.DB) *SQLAtomic {
	return &SQLAtomic{db: db}
}

// Atomically begins a transaction, runs fn with it in context, and commits
// if fn succeeds. Nested calls reuse the outer transaction.
func (a *SQLAtomic) Atomically(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := tx.From(ctx); ok {
		return fn(ctx)
	}

	sqlTx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger tx: %w", err)
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(tx.WithTx(ctx, sqlTx)); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit ledger tx: %w", err)
	}
	return nil
}
