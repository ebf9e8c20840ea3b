package cmd

import (
	"github.com/spf13/cobra"

	"github.com/logward/logward/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "logward",
	Short: "Log warehouse ETL for access and HDFS logs",
	Long: `Logward parses Apache access logs and HDFS DataXceiver / FSNamesystem
logs in parallel, reconciles them into a canonical CSV dataset with
content-derived dimension ids, and bulk-loads the dataset into a
PostgreSQL warehouse. A small HTTP service exposes canned analytics
queries over the loaded tables.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
