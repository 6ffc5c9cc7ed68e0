package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema is the Postgres DDL for the ledger. Idempotent so it can run on
// every startup and at the top of integration suites.
//
// Balance and issuance columns are BIGINT holding the uint64 bit pattern
// (two's complement), since Postgres has no unsigned 64-bit type. Values
// at or above 1<<63 read back as negative in raw SQL and must not be
// compared or summed in SQL; the stores convert on scan and all arithmetic
// happens in the engine.
const Schema = `
CREATE TABLE IF NOT EXISTS ledger_assets (
	asset_id        BIGINT PRIMARY KEY,
	total_issuance  BIGINT NOT NULL DEFAULT 0,
	permissions     JSONB  NOT NULL
);

CREATE TABLE IF NOT EXISTS ledger_next_asset_id (
	singleton  BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (singleton),
	next_id    BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS ledger_balances (
	asset_id    BIGINT NOT NULL,
	account_id  BIGINT NOT NULL,
	free        BIGINT NOT NULL DEFAULT 0,
	reserved    BIGINT NOT NULL DEFAULT 0,
	PRIMARY KEY (asset_id, account_id)
);
`

// Migrate applies the schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply ledger schema: %w", err)
	}
	return nil
}
