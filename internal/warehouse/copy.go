package warehouse

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/logward/logward/internal/staging"
)

// loadCopy implements ModeCopy. The canonical CSVs are streamed through COPY
// into temporary text staging tables, fact ids are minted from the identity
// sequence, and a set-based transform moves everything into the target
// tables. One transaction end to end: on any error nothing is committed.
func (l *Loader) loadCopy(ctx context.Context, dir string) (int64, error) {
	files := datasetFiles(dir)

	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquiring warehouse connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := loadDimensions(ctx, tx, files); err != nil {
		return 0, err
	}
	if err := createStageTables(ctx, tx); err != nil {
		return 0, err
	}
	if err := copyCSV(ctx, tx, files.entries, staging.EntryColumns,
		"stage_log_entry", stageEntryColumns); err != nil {
		return 0, err
	}
	if err := copyCSV(ctx, tx, files.accessDetail, staging.DetailColumns,
		"stage_access_detail", stageDetailColumns); err != nil {
		return 0, err
	}

	// Mint warehouse fact ids. The staging entry key is a join key only;
	// the durable id comes from the identity sequence so the copy and batch
	// modes agree on id provenance.
	tag, err := tx.Exec(ctx,
		"UPDATE stage_log_entry SET fact_id = nextval(pg_get_serial_sequence('log_entry', 'id'))")
	if err != nil {
		return 0, fmt.Errorf("minting fact ids: %w", err)
	}
	rows := tag.RowsAffected()

	if _, err := tx.Exec(ctx, transformEntriesSQL); err != nil {
		return 0, fmt.Errorf("transforming staged entries: %w", err)
	}
	if _, err := tx.Exec(ctx, transformDetailsSQL); err != nil {
		return 0, fmt.Errorf("transforming staged access details: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing load transaction: %w", err)
	}
	l.flushed(int(rows))
	return rows, nil
}

// loadDimensions loads both dimension CSVs. Inserts are idempotent on id:
// action ids are content-derived, so a re-run against a populated dimension
// produces the same rows.
func loadDimensions(ctx context.Context, tx pgx.Tx, files datasetPaths) error {
	err := staging.ReadRows(files.logTypes, staging.DimensionColumns, func(row []string) error {
		_, err := tx.Exec(ctx,
			"INSERT INTO log_type (id, name) VALUES ($1::smallint, $2) ON CONFLICT (id) DO NOTHING",
			row[0], row[1])
		return err
	})
	if err != nil {
		return fmt.Errorf("loading log_type dimension: %w", err)
	}

	err = staging.ReadRows(files.actionTypes, staging.DimensionColumns, func(row []string) error {
		_, err := tx.Exec(ctx,
			"INSERT INTO action_type (id, name) VALUES ($1::uuid, $2) ON CONFLICT (id) DO NOTHING",
			row[0], row[1])
		return err
	})
	if err != nil {
		return fmt.Errorf("loading action_type dimension: %w", err)
	}
	return nil
}

var (
	stageEntryColumns = []string{
		"entry_key", "log_type_id", "action_type_id", "log_timestamp",
		"source_ip", "dest_ip", "block_id", "size_bytes",
	}
	stageDetailColumns = []string{
		"entry_key", "remote_name", "auth_user", "http_method",
		"resource", "http_status", "referrer", "user_agent",
	}
)

// createStageTables creates the session-local text staging tables. Every
// column is text: typing happens once, in the transform, where NULLIF turns
// the CSV's empty-string absence encoding into SQL NULL before the cast.
func createStageTables(ctx context.Context, tx pgx.Tx) error {
	const ddl = `
CREATE TEMPORARY TABLE stage_log_entry (
    entry_key      TEXT,
    log_type_id    TEXT,
    action_type_id TEXT,
    log_timestamp  TEXT,
    source_ip      TEXT,
    dest_ip        TEXT,
    block_id       TEXT,
    size_bytes     TEXT,
    fact_id        BIGINT
) ON COMMIT DROP;

CREATE TEMPORARY TABLE stage_access_detail (
    entry_key   TEXT,
    remote_name TEXT,
    auth_user   TEXT,
    http_method TEXT,
    resource    TEXT,
    http_status TEXT,
    referrer    TEXT,
    user_agent  TEXT
) ON COMMIT DROP;
`
	if _, err := tx.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("creating staging tables: %w", err)
	}
	return nil
}

// copyCSV streams one canonical CSV into a staging table via COPY.
func copyCSV(ctx context.Context, tx pgx.Tx, path string, csvColumns []string, table string, tableColumns []string) error {
	var rows [][]any
	err := staging.ReadRows(path, csvColumns, func(row []string) error {
		vals := make([]any, len(row))
		for i, v := range row {
			vals[i] = v
		}
		rows = append(rows, vals)
		return nil
	})
	if err != nil {
		return err
	}

	_, err = tx.CopyFrom(ctx, pgx.Identifier{table}, tableColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copying %s into %s: %w", path, table, err)
	}
	return nil
}

const transformEntriesSQL = `
INSERT INTO log_entry (id, log_type_id, action_type_id, log_timestamp,
                       source_ip, dest_ip, block_id, size_bytes)
SELECT fact_id,
       log_type_id::smallint,
       action_type_id::uuid,
       log_timestamp::timestamptz,
       NULLIF(source_ip, '')::inet,
       NULLIF(dest_ip, '')::inet,
       NULLIF(block_id, '')::bigint,
       NULLIF(size_bytes, '')::bigint
FROM stage_log_entry
`

const transformDetailsSQL = `
INSERT INTO log_access_detail (log_entry_id, remote_name, auth_user, http_method,
                               resource, http_status, referrer, user_agent)
SELECT se.fact_id,
       sd.remote_name,
       sd.auth_user,
       sd.http_method,
       sd.resource,
       sd.http_status::int,
       NULLIF(sd.referrer, ''),
       sd.user_agent
FROM stage_access_detail sd
JOIN stage_log_entry se USING (entry_key)
`
