package cli

import (
	"github.com/spf13/cobra"

	"github.com/eepp/lttngpack/internal/server"
)

// serveCommand creates the serve command, exposing the version matrix over
// HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the version matrix over HTTP",
		Long: `Start an HTTP server exposing the collected version data as JSON.

Endpoints:
  GET /healthz                 Liveness check
  GET /api/v1/matrix           The full version matrix
  GET /api/v1/distros          All distros with their releases
  GET /api/v1/distros/{name}   A single distro by name`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Server.Listen = listen
			}

			backend, err := c.newBackend(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer backend.Close()

			srv := server.New(cfg.Server.Listen, c.newCollector(cfg, backend), c.Logger)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config, :8099)")
	return cmd
}
