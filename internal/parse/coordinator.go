package parse

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/logward/logward/internal/model"
	"github.com/logward/logward/internal/staging"
)

// Run spawns one worker per supported log type, joins on all of them, and
// returns their results ordered by log type. The join is a hard barrier:
// there is no timeout, and a failed or hung worker fails or blocks the whole
// parse stage, matching batch semantics. Any worker error, including a
// missing input or missing staging output, is fatal before merge — but the
// results of workers that did complete accompany the error so callers can
// report the counts collected up to the failure.
func Run(logDir, outDir string) ([]*WorkerResult, error) {
	tmpDir := filepath.Join(outDir, staging.TmpDirName)
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", tmpDir, err)
	}

	var (
		mu      sync.Mutex
		results []*WorkerResult
		errs    []error
	)

	var wg sync.WaitGroup
	for _, t := range model.AllLogTypes() {
		wg.Add(1)
		go func(t model.LogType) {
			defer wg.Done()

			input, err := resolveInput(logDir, t)
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return
			}

			res, err := RunWorker(t, input, tmpDir)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s worker: %w", t.Name(), err))
				return
			}
			results = append(results, res)
		}(t)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].LogType < results[j].LogType })

	if len(errs) > 0 {
		// Report the first failure; the rest are logged so nothing hides.
		for _, err := range errs[1:] {
			log.Error().Err(err).Msg("additional worker failure")
		}
		return results, errs[0]
	}

	// A worker that returned without error but left no staging file behind
	// indicates a crash-shaped bug; refuse to merge on top of it.
	for _, res := range results {
		for _, p := range []string{res.EntryPath, res.ActionPath} {
			if _, err := os.Stat(p); err != nil {
				return results, fmt.Errorf("%s worker output missing: %w", res.LogType.Name(), err)
			}
		}
	}

	return results, nil
}

// BuildManifest assembles the run manifest from worker results.
func BuildManifest(results []*WorkerResult) staging.Manifest {
	m := staging.Manifest{GeneratedAt: time.Now().UTC()}
	for _, res := range results {
		m.Formats = append(m.Formats, staging.FormatStats{
			LogType:    res.LogType.Name(),
			Input:      res.Input,
			TotalLines: res.TotalLines,
			Matched:    res.Matched,
			Records:    res.Records,
			Duration:   res.Duration,
		})
	}
	return m
}

// resolveInput maps a log type to its file under logDir, accepting a gzipped
// variant of the canonical name.
func resolveInput(logDir string, t model.LogType) (string, error) {
	plain := filepath.Join(logDir, t.Filename())
	if _, err := os.Stat(plain); err == nil {
		return plain, nil
	}
	gz := plain + ".gz"
	if _, err := os.Stat(gz); err == nil {
		return gz, nil
	}
	return "", fmt.Errorf("input for %s not found: %s (or .gz)", t.Name(), plain)
}
