package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/logward/logward/internal/config"
	"github.com/logward/logward/internal/progress"
	"github.com/logward/logward/internal/warehouse"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Bulk-load the canonical dataset into the warehouse",
	Long: `Loads the canonical dataset from the output directory into PostgreSQL
using the configured loader mode. After a failed load the warehouse may hold a
partial dataset; truncate (--truncate or logward schema truncate) and re-run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		truncate, _ := cmd.Flags().GetBool("truncate")
		if err := runLoadStage(cmd.Context(), cfg, truncate); err != nil {
			printManifest(cfg.OutDir)
			return err
		}
		return nil
	},
}

func init() {
	loadCmd.Flags().Bool("truncate", false, "truncate warehouse tables before loading")
	rootCmd.AddCommand(loadCmd)
}

// runLoadStage connects, optionally truncates, and loads. Shared by load
// and run.
func runLoadStage(ctx context.Context, cfg *config.Config, truncate bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	pool, err := warehouse.Connect(ctx, cfg.DSN())
	if err != nil {
		return fmt.Errorf("load stage: %w", err)
	}
	defer pool.Close()

	if err := warehouse.EnsureSchema(ctx, pool); err != nil {
		return fmt.Errorf("load stage: %w", err)
	}
	if truncate {
		if err := warehouse.Truncate(ctx, pool); err != nil {
			return fmt.Errorf("load stage: %w", err)
		}
	}

	mode, err := warehouse.ParseMode(string(cfg.LoaderMode))
	if err != nil {
		return fmt.Errorf("load stage: %w", err)
	}

	loader := warehouse.NewLoader(pool, mode, cfg.BatchSize)
	reporter := progress.NewReporter()
	reporter.Start(datasetRecordTotal(cfg.OutDir))
	loader.OnFlush = reporter.Add

	err = loader.Load(ctx, cfg.OutDir)
	reporter.Finish()
	if err != nil {
		return fmt.Errorf("load stage: %w", err)
	}
	return nil
}
