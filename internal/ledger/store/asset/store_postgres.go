package asset

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/models"
	"github.com/trackback-blockchain/plug-blockchain/pkg/domain"
	"github.com/trackback-blockchain/plug-blockchain/pkg/platform/sentinel"
	"github.com/trackback-blockchain/plug-blockchain/pkg/platform/tx"
)

// PostgresStore persists asset records in PostgreSQL. Permission sets are
// stored in their versioned JSON envelope so old rows stay decodable.
type PostgresStore struct {
	db            *sql.DB
	defaultNextID domain.AssetID
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewPostgres constructs a PostgreSQL-backed asset store. defaultNextID is
// returned until the counter row is first written.
func NewPostgres(db *sql.DB, defaultNextID domain.AssetID) *PostgresStore {
	return &PostgresStore{db: db, defaultNextID: defaultNextID}
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx
	}
	return s.db
}

// Get retrieves one asset record.
func (s *PostgresStore) Get(ctx context.Context, id domain.AssetID) (models.Asset, error) {
	var (
		issuance int64
		perms    []byte
	)
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT total_issuance, permissions FROM ledger_assets WHERE asset_id = $1`,
		int64(id),
	).Scan(&issuance, &perms)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Asset{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Asset{}, fmt.Errorf("get asset %d: %w", id, err)
	}

	asset := models.Asset{ID: id, TotalIssuance: domain.Balance(issuance)}
	if err := json.Unmarshal(perms, &asset.Permissions); err != nil {
		return models.Asset{}, fmt.Errorf("decode permissions for asset %d: %w", id, err)
	}
	return asset, nil
}

// Put creates or replaces an asset record.
func (s *PostgresStore) Put(ctx context.Context, asset models.Asset) error {
	perms, err := json.Marshal(asset.Permissions)
	if err != nil {
		return fmt.Errorf("encode permissions for asset %d: %w", asset.ID, err)
	}
	_, err = s.q(ctx).ExecContext(ctx,
		`INSERT INTO ledger_assets (asset_id, total_issuance, permissions)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (asset_id) DO UPDATE
		 SET total_issuance = EXCLUDED.total_issuance,
		     permissions = EXCLUDED.permissions`,
		int64(asset.ID), int64(asset.TotalIssuance), perms,
	)
	if err != nil {
		return fmt.Errorf("put asset %d: %w", asset.ID, err)
	}
	return nil
}

// Exists reports whether an asset record is present.
func (s *PostgresStore) Exists(ctx context.Context, id domain.AssetID) (bool, error) {
	var exists bool
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM ledger_assets WHERE asset_id = $1)`,
		int64(id),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check asset %d: %w", id, err)
	}
	return exists, nil
}

// NextID returns the auto-assignment counter, or the configured default
// before the first write.
func (s *PostgresStore) NextID(ctx context.Context) (domain.AssetID, error) {
	var next int64
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT next_id FROM ledger_next_asset_id`,
	).Scan(&next)
	if errors.Is(err, sql.ErrNoRows) {
		return s.defaultNextID, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get next asset id: %w", err)
	}
	return domain.AssetID(next), nil
}

// SetNextID overwrites the auto-assignment counter.
func (s *PostgresStore) SetNextID(ctx context.Context, id domain.AssetID) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO ledger_next_asset_id (singleton, next_id) VALUES (TRUE, $1)
		 ON CONFLICT (singleton) DO UPDATE SET next_id = EXCLUDED.next_id`,
		int64(id),
	)
	if err != nil {
		return fmt.Errorf("set next asset id: %w", err)
	}
	return nil
}
