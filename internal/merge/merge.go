// Package merge assembles the worker staging outputs into the canonical
// dataset the loader consumes, and verifies the cross-worker action-id
// agreement on the way.
package merge

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/logward/logward/internal/model"
	"github.com/logward/logward/internal/staging"
)

// ActionConflictError reports two workers deriving different ids for the same
// action name. The id function is pure, so this can only mean a broken build
// or corrupted staging data — it is fatal and not recoverable by retry.
type ActionConflictError struct {
	Name string
	A, B uuid.UUID
}

func (e *ActionConflictError) Error() string {
	return fmt.Sprintf("action id conflict for %q: %s vs %s", e.Name, e.A, e.B)
}

// Merge locates the worker outputs under tmpDir by filename convention,
// concatenates them into the canonical dataset under outDir, writes the
// log_type catalog from the static enumeration, and reconciles the observed
// action sets. Per-worker row order is preserved; rows are grouped by source
// format with no cross-format ordering guarantee.
func Merge(tmpDir, outDir string) error {
	entryFiles, err := discover(tmpDir, staging.WorkerEntryPattern, len(model.AllLogTypes()))
	if err != nil {
		return err
	}
	actionFiles, err := discover(tmpDir, staging.WorkerActionPattern, len(model.AllLogTypes()))
	if err != nil {
		return err
	}
	detailFiles, err := discover(tmpDir, staging.WorkerDetailPattern, 1)
	if err != nil {
		return err
	}

	if err := writeLogTypeCatalog(filepath.Join(outDir, staging.LogTypeFile)); err != nil {
		return err
	}

	actions, err := reconcileActions(actionFiles)
	if err != nil {
		return err
	}
	if err := staging.WriteActions(filepath.Join(outDir, staging.ActionTypeFile), actions); err != nil {
		return err
	}

	if err := concat(entryFiles, filepath.Join(outDir, staging.EntryFile), staging.EntryColumns); err != nil {
		return err
	}
	if err := concat(detailFiles, filepath.Join(outDir, staging.AccessDetailFile), staging.DetailColumns); err != nil {
		return err
	}

	log.Info().
		Int("actions", len(actions)).
		Int("entry_files", len(entryFiles)).
		Str("out", outDir).
		Msg("canonical dataset written")

	return nil
}

// discover globs tmpDir for worker outputs and enforces the expected count.
// Fewer files than workers means a worker died without output; merging the
// survivors would silently drop a whole format.
func discover(tmpDir, pattern string, want int) ([]string, error) {
	matches, err := doublestar.FilepathGlob(filepath.Join(tmpDir, pattern))
	if err != nil {
		return nil, fmt.Errorf("globbing %s: %w", pattern, err)
	}
	if len(matches) != want {
		return nil, fmt.Errorf("expected %d staging files matching %s, found %d", want, pattern, len(matches))
	}
	sort.Strings(matches)
	return matches, nil
}

// reconcileActions unions the per-worker observed action sets. Every name
// seen by more than one worker must carry the same id everywhere.
func reconcileActions(paths []string) (map[string]uuid.UUID, error) {
	merged := make(map[string]uuid.UUID)
	for _, p := range paths {
		catalog, err := staging.ReadActionCatalog(p)
		if err != nil {
			return nil, err
		}
		for name, id := range catalog {
			if prev, seen := merged[name]; seen && prev != id {
				return nil, &ActionConflictError{Name: name, A: prev, B: id}
			}
			merged[name] = id
		}
	}
	return merged, nil
}

// writeLogTypeCatalog writes the closed log_type dimension. It comes from the
// enumeration, never from observed data.
func writeLogTypeCatalog(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(staging.DimensionColumns); err != nil {
		f.Close()
		return fmt.Errorf("writing %s header: %w", path, err)
	}
	for _, t := range model.AllLogTypes() {
		if err := w.Write([]string{strconv.Itoa(int(t.ID())), t.Name()}); err != nil {
			f.Close()
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return f.Close()
}

// concat streams the rows of each source file into one destination CSV with
// a single header.
func concat(sources []string, dest string, columns []string) error {
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		f.Close()
		return fmt.Errorf("writing %s header: %w", dest, err)
	}

	for _, src := range sources {
		err := staging.ReadRows(src, columns, func(row []string) error {
			return w.Write(row)
		})
		if err != nil {
			f.Close()
			return fmt.Errorf("merging %s: %w", src, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flushing %s: %w", dest, err)
	}
	return f.Close()
}
