package warehouse

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/logward/logward/internal/model"
	"github.com/logward/logward/internal/staging"
)

// Mode selects the bulk-load strategy.
type Mode string

const (
	// ModeCopy streams the canonical CSVs through COPY into temporary
	// staging tables, then transforms them into the target tables in one
	// set-based transaction. Fastest path, all-or-nothing.
	ModeCopy Mode = "copy"

	// ModeBatch inserts fact rows in fixed-size multi-row batches, each in
	// its own transaction. Slower, but progress survives a mid-load failure
	// and the per-batch action handling tolerates a partially-populated
	// action_type dimension.
	ModeBatch Mode = "batch"
)

// ParseMode validates a mode string from configuration or flags.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeCopy, ModeBatch:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown loader mode %q (expected %q or %q)", s, ModeCopy, ModeBatch)
	}
}

// Loader bulk-loads a canonical dataset directory into the warehouse.
type Loader struct {
	pool      *pgxpool.Pool
	mode      Mode
	batchSize int

	// OnFlush, when set, is called after each committed batch with the
	// number of fact rows in it. Copy mode reports one flush for the whole
	// dataset. Used for progress reporting.
	OnFlush func(rows int)
}

// NewLoader builds a Loader. batchSize only applies to ModeBatch; values
// below 1 fall back to a sane default.
func NewLoader(pool *pgxpool.Pool, mode Mode, batchSize int) *Loader {
	if batchSize < 1 {
		batchSize = 5000
	}
	return &Loader{pool: pool, mode: mode, batchSize: batchSize}
}

// Load reads the canonical dataset from dir and loads it using the
// configured mode. On error the warehouse may hold a partial load; the
// recovery contract is truncate and re-run.
func (l *Loader) Load(ctx context.Context, dir string) error {
	start := time.Now()

	var (
		rows int64
		err  error
	)
	switch l.mode {
	case ModeCopy:
		rows, err = l.loadCopy(ctx, dir)
	case ModeBatch:
		rows, err = l.loadBatch(ctx, dir)
	default:
		return fmt.Errorf("unknown loader mode %q", l.mode)
	}
	if err != nil {
		return err
	}

	log.Info().
		Str("mode", string(l.mode)).
		Int64("rows", rows).
		Dur("elapsed", time.Since(start)).
		Msg("warehouse load complete")
	return nil
}

func (l *Loader) flushed(rows int) {
	if l.OnFlush != nil {
		l.OnFlush(rows)
	}
}

// datasetPaths resolves the canonical file locations inside a dataset dir.
type datasetPaths struct {
	logTypes     string
	actionTypes  string
	entries      string
	accessDetail string
}

func datasetFiles(dir string) datasetPaths {
	return datasetPaths{
		logTypes:     filepath.Join(dir, staging.LogTypeFile),
		actionTypes:  filepath.Join(dir, staging.ActionTypeFile),
		entries:      filepath.Join(dir, staging.EntryFile),
		accessDetail: filepath.Join(dir, staging.AccessDetailFile),
	}
}

// ensureLogTypes upserts the closed log_type dimension from the enum. The
// dimension is code-defined, so existing rows are left untouched.
func ensureLogTypes(ctx context.Context, q querier) error {
	for _, t := range model.AllLogTypes() {
		_, err := q.Exec(ctx,
			"INSERT INTO log_type (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING",
			t.ID(), t.Name())
		if err != nil {
			return fmt.Errorf("ensuring log_type %s: %w", t.Name(), err)
		}
	}
	return nil
}

// querier is the subset of pgx execution shared by pools, conns, and txs.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}
