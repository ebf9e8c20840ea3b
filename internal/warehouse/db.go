// Package warehouse owns the PostgreSQL side of the pipeline: schema
// bootstrap, truncation, and the two bulk-load strategies.
package warehouse

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Connect opens a pgx pool and verifies the connection immediately. A
// connection or authentication failure is surfaced to the caller right away;
// there is no retry loop — a batch pipeline with a dead warehouse has nothing
// useful to do.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("configuring warehouse pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to warehouse: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the warehouse tables when absent. This is bootstrap,
// not migration tooling: the schema is fixed and additive changes are made
// here.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Truncate empties all target tables and resets the fact-row identity. This
// is the documented recovery action after any load failure: prior batches
// stay committed on failure, so a re-run without truncation duplicates them.
func Truncate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx,
		"TRUNCATE log_access_detail, log_entry, action_type, log_type RESTART IDENTITY CASCADE")
	if err != nil {
		return fmt.Errorf("truncating warehouse tables: %w", err)
	}
	log.Info().Msg("warehouse tables truncated")
	return nil
}

// schema is the complete warehouse DDL. Four tables: two dimensions, the
// fact table, and the 1:1 access detail extension.
const schema = `
CREATE TABLE IF NOT EXISTS log_type (
    id   SMALLINT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS action_type (
    id   UUID PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS log_entry (
    id             BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    log_type_id    SMALLINT NOT NULL REFERENCES log_type(id),
    action_type_id UUID NOT NULL REFERENCES action_type(id),
    log_timestamp  TIMESTAMPTZ NOT NULL,
    source_ip      INET,
    dest_ip        INET,
    block_id       BIGINT,
    size_bytes     BIGINT CHECK (size_bytes >= 0)
);

CREATE INDEX IF NOT EXISTS idx_log_entry_timestamp ON log_entry(log_timestamp);
CREATE INDEX IF NOT EXISTS idx_log_entry_action ON log_entry(action_type_id);
CREATE INDEX IF NOT EXISTS idx_log_entry_block ON log_entry(block_id);

CREATE TABLE IF NOT EXISTS log_access_detail (
    log_entry_id BIGINT PRIMARY KEY REFERENCES log_entry(id) ON DELETE CASCADE,
    remote_name  TEXT,
    auth_user    TEXT,
    http_method  TEXT,
    resource     TEXT,
    http_status  INT,
    referrer     TEXT,
    user_agent   TEXT
);
`
