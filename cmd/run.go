package cmd

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: parse, merge, and load",
	Long: `Parses the raw logs into the canonical dataset and loads it into the
warehouse in one go. Equivalent to logward parse followed by logward load.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if err := runParseStage(cfg); err != nil {
			return err
		}
		printManifest(cfg.OutDir)

		truncate, _ := cmd.Flags().GetBool("truncate")
		return runLoadStage(cmd.Context(), cfg, truncate)
	},
}

func init() {
	runCmd.Flags().Bool("truncate", false, "truncate warehouse tables before loading")
	rootCmd.AddCommand(runCmd)
}
