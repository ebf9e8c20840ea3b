package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/logward/logward/internal/config"
	"github.com/logward/logward/internal/merge"
	"github.com/logward/logward/internal/parse"
	"github.com/logward/logward/internal/staging"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse the raw logs into the canonical warehouse dataset",
	Long: `Runs one parse worker per log format against the configured log
directory, merges the worker outputs into the canonical CSV dataset, and
writes a JSON manifest with per-format match counts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := runParseStage(cfg); err != nil {
			return err
		}
		printManifest(cfg.OutDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

// runParseStage runs workers and merge back to back, leaving the canonical
// dataset and manifest in cfg.OutDir. Shared by parse and run.
func runParseStage(cfg *config.Config) error {
	results, err := parse.Run(cfg.LogDir, cfg.OutDir)
	if err != nil {
		// Workers that finished before the failure still report their counts.
		printFormatStats("Parsed before failure:", parse.BuildManifest(results).Formats)
		return fmt.Errorf("parse stage: %w", err)
	}

	tmpDir := filepath.Join(cfg.OutDir, staging.TmpDirName)
	if err := merge.Merge(tmpDir, cfg.OutDir); err != nil {
		return fmt.Errorf("merge stage: %w", err)
	}

	manifest := parse.BuildManifest(results)
	manifestPath := filepath.Join(cfg.OutDir, staging.ManifestFile)
	if err := staging.WriteManifest(manifestPath, manifest); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
