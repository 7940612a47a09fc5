package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap()
			if err != nil {
				return err
			}
			defer app.Log.Sync()

			if addr == "" {
				addr = app.Config.ListenAddr
			}
			app.Log.Info("server listening", "addr", addr, "database", app.Config.DatabasePath)
			if err := app.Router().Run(addr); err != nil {
				return fmt.Errorf("run server: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from LISTEN_ADDR)")
	return cmd
}
