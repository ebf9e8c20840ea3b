package cmd

import (
	"github.com/spf13/cobra"

	"github.com/logward/logward/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize logward configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the warehouse connection and pipeline directories, and generates a .logward.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
