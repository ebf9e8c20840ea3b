package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/logward/logward/internal/warehouse"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Manage the warehouse schema",
}

var schemaInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the warehouse tables if they do not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		pool, err := warehouse.Connect(ctx, cfg.DSN())
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := warehouse.EnsureSchema(ctx, pool); err != nil {
			return err
		}
		fmt.Println("Warehouse schema ready.")
		return nil
	},
}

var schemaTruncateCmd = &cobra.Command{
	Use:   "truncate",
	Short: "Empty all warehouse tables and reset identities",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		pool, err := warehouse.Connect(ctx, cfg.DSN())
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := warehouse.Truncate(ctx, pool); err != nil {
			return err
		}
		fmt.Println("Warehouse tables truncated.")
		return nil
	},
}

func init() {
	schemaCmd.AddCommand(schemaInitCmd)
	schemaCmd.AddCommand(schemaTruncateCmd)
	rootCmd.AddCommand(schemaCmd)
}
