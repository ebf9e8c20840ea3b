package cmd

import (
	"github.com/spf13/cobra"

	"github.com/logward/logward/internal/query"
	"github.com/logward/logward/internal/warehouse"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the canned query catalog over HTTP",
	Long: `Starts an HTTP service exposing a fixed catalog of parameterized
analytics queries against the loaded warehouse. Intended to run after a
successful load; the pipeline itself never goes through this service.`,
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

		allowAll, _ := cmd.Flags().GetBool("allow-all-origins")
		srv := query.New(query.Config{
			Port:     cfg.Serve.Port,
			Username: cfg.Serve.Username,
			Password: cfg.Serve.Password,
			AllowAll: cfg.Serve.AllowAll || allowAll,
		}, pool)

		return srv.Start()
	},
}

func init() {
	serveCmd.Flags().Bool("allow-all-origins", false, "allow all CORS origins (dev mode)")
	rootCmd.AddCommand(serveCmd)
}
