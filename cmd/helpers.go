package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/logward/logward/internal/config"
	"github.com/logward/logward/internal/logger"
	"github.com/logward/logward/internal/staging"
)

// loadConfig loads and validates the config and initializes logging,
// providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `logward init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger.Init(level, cfg.LogJSON)
	return cfg, nil
}

// printManifest writes the per-format parse summary to stderr. It is printed
// after a successful parse and again when a later stage fails, so the
// operator sees what the dataset contained.
func printManifest(outDir string) {
	m, err := staging.ReadManifest(filepath.Join(outDir, staging.ManifestFile))
	if err != nil {
		return
	}
	printFormatStats("Parse summary:", m.Formats)
}

// printFormatStats writes per-format match counts to stderr under the given
// heading. Also used for the partial summary when a worker fails mid-run.
func printFormatStats(heading string, formats []staging.FormatStats) {
	if len(formats) == 0 {
		return
	}
	fmt.Fprintln(os.Stderr, heading)
	for _, f := range formats {
		fmt.Fprintf(os.Stderr, "  %-18s %d/%d lines matched, %d records (%s)\n",
			f.LogType, f.Matched, f.TotalLines, f.Records, f.Duration.Round(time.Millisecond))
	}
}

// datasetRecordTotal sums the record counts in the manifest, used to size the
// load progress bar. Zero when the manifest is unreadable.
func datasetRecordTotal(outDir string) int {
	m, err := staging.ReadManifest(filepath.Join(outDir, staging.ManifestFile))
	if err != nil {
		return 0
	}
	total := 0
	for _, f := range m.Formats {
		total += f.Records
	}
	return total
}
