package warehouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/logward/logward/internal/staging"
)

// loadBatch implements ModeBatch. Fact rows go in as fixed-size multi-row
// inserts, one transaction per batch, so committed batches survive a mid-load
// failure. Actions are resolved get-or-create by name against the live
// dimension, which tolerates a warehouse that already holds some of them.
func (l *Loader) loadBatch(ctx context.Context, dir string) (int64, error) {
	files := datasetFiles(dir)

	catalog, err := staging.ReadActionCatalog(files.actionTypes)
	if err != nil {
		return 0, err
	}
	details, err := readDetailMap(files.accessDetail)
	if err != nil {
		return 0, err
	}
	if err := ensureLogTypes(ctx, l.pool); err != nil {
		return 0, err
	}

	actions := newActionCache(catalog)
	batch := make([]staging.Entry, 0, l.batchSize)
	var total int64

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := l.flushBatch(ctx, batch, details, actions); err != nil {
			return fmt.Errorf("after %d committed rows: %w", total, err)
		}
		total += int64(len(batch))
		l.flushed(len(batch))
		batch = batch[:0]
		return nil
	}

	err = staging.ReadEntries(files.entries, func(e staging.Entry) error {
		batch = append(batch, e)
		if len(batch) == l.batchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return total, err
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}

func readDetailMap(path string) (map[uuid.UUID]staging.Detail, error) {
	details := make(map[uuid.UUID]staging.Detail)
	err := staging.ReadDetails(path, func(d staging.Detail) error {
		details[d.EntryKey] = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

// flushBatch inserts one batch of fact rows and their access details in a
// single transaction.
func (l *Loader) flushBatch(ctx context.Context, batch []staging.Entry, details map[uuid.UUID]staging.Detail, actions *actionCache) error {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning batch transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	cols, err := entryArrays(batch, func(id uuid.UUID) (uuid.UUID, error) {
		return actions.resolve(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	// A single INSERT ... SELECT over unnest emits RETURNING rows in array
	// order, so ids line up positionally with the batch slice.
	rows, err := tx.Query(ctx, insertEntriesSQL,
		cols.logTypes, cols.actions, cols.timestamps,
		cols.sourceIPs, cols.destIPs, cols.blockIDs, cols.sizes)
	if err != nil {
		return fmt.Errorf("inserting fact batch: %w", err)
	}
	ids := make([]int64, 0, len(batch))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("reading fact ids: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("inserting fact batch: %w", err)
	}
	if len(ids) != len(batch) {
		return fmt.Errorf("fact batch returned %d ids for %d rows", len(ids), len(batch))
	}

	detailRows := batchDetailRows(batch, ids, details)
	if len(detailRows) > 0 {
		_, err = tx.CopyFrom(ctx, pgx.Identifier{"log_access_detail"},
			[]string{"log_entry_id", "remote_name", "auth_user", "http_method",
				"resource", "http_status", "referrer", "user_agent"},
			pgx.CopyFromRows(detailRows))
		if err != nil {
			return fmt.Errorf("attaching access details: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	return nil
}

const insertEntriesSQL = `
INSERT INTO log_entry (log_type_id, action_type_id, log_timestamp,
                       source_ip, dest_ip, block_id, size_bytes)
SELECT t.log_type_id,
       t.action_type_id::uuid,
       t.log_timestamp,
       t.source_ip::inet,
       t.dest_ip::inet,
       t.block_id,
       t.size_bytes
FROM unnest($1::smallint[], $2::text[], $3::timestamptz[],
            $4::text[], $5::text[], $6::bigint[], $7::bigint[])
     AS t(log_type_id, action_type_id, log_timestamp,
          source_ip, dest_ip, block_id, size_bytes)
RETURNING id
`

// entryColumns is the column-major form of a fact batch, ready for unnest.
// Nullable columns use pointers so absent values travel as SQL NULL.
type entryColumns struct {
	logTypes   []int16
	actions    []string
	timestamps []time.Time
	sourceIPs  []*string
	destIPs    []*string
	blockIDs   []*int64
	sizes      []*int64
}

func entryArrays(batch []staging.Entry, resolveAction func(uuid.UUID) (uuid.UUID, error)) (entryColumns, error) {
	c := entryColumns{
		logTypes:   make([]int16, len(batch)),
		actions:    make([]string, len(batch)),
		timestamps: make([]time.Time, len(batch)),
		sourceIPs:  make([]*string, len(batch)),
		destIPs:    make([]*string, len(batch)),
		blockIDs:   make([]*int64, len(batch)),
		sizes:      make([]*int64, len(batch)),
	}
	for i, e := range batch {
		action, err := resolveAction(e.ActionTypeID)
		if err != nil {
			return entryColumns{}, err
		}
		c.logTypes[i] = e.LogTypeID
		c.actions[i] = action.String()
		c.timestamps[i] = e.Timestamp
		c.sourceIPs[i] = optStr(e.SourceIP)
		c.destIPs[i] = optStr(e.DestIP)
		c.blockIDs[i] = e.BlockID
		c.sizes[i] = e.SizeBytes
	}
	return c, nil
}

// batchDetailRows pairs minted fact ids with the access details keyed by the
// staging entry key. Entries without a detail row contribute nothing.
func batchDetailRows(batch []staging.Entry, ids []int64, details map[uuid.UUID]staging.Detail) [][]any {
	var rows [][]any
	for i, e := range batch {
		d, ok := details[e.Key]
		if !ok {
			continue
		}
		rows = append(rows, []any{
			ids[i], d.RemoteName, d.AuthUser, d.HTTPMethod,
			d.Resource, d.HTTPStatus, optStr(d.Referrer), d.UserAgent,
		})
	}
	return rows
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// actionCache resolves staged action ids to warehouse action ids,
// get-or-create by name. With content-derived ids the two normally agree,
// but a warehouse whose dimension predates this tool may hold a different id
// for the same name; the name stays authoritative.
type actionCache struct {
	names    map[uuid.UUID]string // catalog id -> action name
	resolved map[uuid.UUID]uuid.UUID
}

func newActionCache(catalog map[string]uuid.UUID) *actionCache {
	names := make(map[uuid.UUID]string, len(catalog))
	for name, id := range catalog {
		names[id] = name
	}
	return &actionCache{
		names:    names,
		resolved: make(map[uuid.UUID]uuid.UUID, len(catalog)),
	}
}

func (c *actionCache) resolve(ctx context.Context, tx pgx.Tx, id uuid.UUID) (uuid.UUID, error) {
	if dbID, ok := c.resolved[id]; ok {
		return dbID, nil
	}
	name, ok := c.names[id]
	if !ok {
		return uuid.Nil, fmt.Errorf("action id %s not in dataset catalog", id)
	}

	var dbIDText string
	err := tx.QueryRow(ctx, "SELECT id::text FROM action_type WHERE name = $1", name).Scan(&dbIDText)
	if errors.Is(err, pgx.ErrNoRows) {
		_, err = tx.Exec(ctx,
			"INSERT INTO action_type (id, name) VALUES ($1::uuid, $2)", id.String(), name)
		if err != nil {
			return uuid.Nil, fmt.Errorf("creating action %q: %w", name, err)
		}
		c.resolved[id] = id
		return id, nil
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolving action %q: %w", name, err)
	}
	dbID, err := uuid.Parse(dbIDText)
	if err != nil {
		return uuid.Nil, fmt.Errorf("action %q has malformed id %q: %w", name, dbIDText, err)
	}
	c.resolved[id] = dbID
	return dbID, nil
}
