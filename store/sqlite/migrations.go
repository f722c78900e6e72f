package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the mintledger store (SQLite).
var Migrations = migrate.NewGroup("mintledger")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_mintledger_collections",
			Version: "20250101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS mintledger_collections (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    symbol      TEXT NOT NULL,
    max_supply  INTEGER NOT NULL CHECK (max_supply > 0),
    base_uri    TEXT NOT NULL DEFAULT '',
    owner       TEXT NOT NULL,
    currency    TEXT NOT NULL,
    opens_at    TEXT NOT NULL,
    cost        TEXT NOT NULL DEFAULT '0',
    paused      INTEGER NOT NULL DEFAULT 0,
    created_at  TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_mintledger_collections_owner ON mintledger_collections (owner);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS mintledger_collections`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_mintledger_receipts",
			Version: "20250101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS mintledger_receipts (
    id             TEXT PRIMARY KEY,
    collection_id  TEXT NOT NULL REFERENCES mintledger_collections (id),
    minter         TEXT NOT NULL,
    first_token_id INTEGER NOT NULL CHECK (first_token_id >= 1),
    quantity       INTEGER NOT NULL CHECK (quantity >= 1),
    currency       TEXT NOT NULL,
    unit_cost      TEXT NOT NULL,
    payment        TEXT NOT NULL,
    minted_at      TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_mintledger_receipts_first ON mintledger_receipts (collection_id, first_token_id);
CREATE INDEX IF NOT EXISTS idx_mintledger_receipts_minter ON mintledger_receipts (collection_id, minter);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS mintledger_receipts`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_mintledger_withdrawals",
			Version: "20250101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS mintledger_withdrawals (
    id            TEXT PRIMARY KEY,
    collection_id TEXT NOT NULL REFERENCES mintledger_collections (id),
    recipient     TEXT NOT NULL,
    currency      TEXT NOT NULL,
    amount        TEXT NOT NULL,
    withdrawn_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_mintledger_withdrawals_coll ON mintledger_withdrawals (collection_id, withdrawn_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS mintledger_withdrawals`)
				return err
			},
		},
	)
}
