package balance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/models"
	"github.com/trackback-blockchain/plug-blockchain/pkg/domain"
	"github.com/trackback-blockchain/plug-blockchain/pkg/platform/tx"
)

// PostgresStore persists per-account balances in PostgreSQL. Missing rows
// read as the zero record; writes upsert only the touched column.
type PostgresStore struct {
	db *sql.DB
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx
	}
	return s.db
}

// Get retrieves the balance record for one account under one asset.
func (s *PostgresStore) Get(ctx context.Context, asset domain.AssetID, account domain.AccountID) (models.BalanceRecord, error) {
	var free, reserved int64
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT free, reserved FROM ledger_balances WHERE asset_id = $1 AND account_id = $2`,
		int64(asset), int64(account),
	).Scan(&free, &reserved)
	if errors.Is(err, sql.ErrNoRows) {
		return models.BalanceRecord{}, nil
	}
	if err != nil {
		return models.BalanceRecord{}, fmt.Errorf("get balance %d/%d: %w", asset, account, err)
	}
	return models.BalanceRecord{Free: domain.Balance(free), Reserved: domain.Balance(reserved)}, nil
}

// SetFree overwrites the free portion of a balance record.
func (s *PostgresStore) SetFree(ctx context.Context, asset domain.AssetID, account domain.AccountID, amount domain.Balance) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO ledger_balances (asset_id, account_id, free, reserved)
		 VALUES ($1, $2, $3, 0)
		 ON CONFLICT (asset_id, account_id) DO UPDATE SET free = EXCLUDED.free`,
		int64(asset), int64(account), int64(amount),
	)
	if err != nil {
		return fmt.Errorf("set free balance %d/%d: %w", asset, account, err)
	}
	return nil
}

// SetReserved overwrites the reserved portion of a balance record.
func (s *PostgresStore) SetReserved(ctx context.Context, asset domain.AssetID, account domain.AccountID, amount domain.Balance) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO ledger_balances (asset_id, account_id, free, reserved)
		 VALUES ($1, $2, 0, $3)
		 ON CONFLICT (asset_id, account_id) DO UPDATE SET reserved = EXCLUDED.reserved`,
		int64(asset), int64(account), int64(amount),
	)
	if err != nil {
		return fmt.Errorf("set reserved balance %d/%d: %w", asset, account, err)
	}
	return nil
}
