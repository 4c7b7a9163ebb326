package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"trendpress/internal/api"
)

func newServeCmd(app *app) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			server := api.NewServer(api.ServerConfig{Address: listen}, app.sessionSvc, app.contentSvc, app.logger)
			return server.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", app.apiListen, "Address to listen on")

	return cmd
}
