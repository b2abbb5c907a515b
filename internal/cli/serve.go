package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/daovote/internal/cli/render"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only query API and metrics",
		Long: `Serve governance state over HTTP until interrupted.

Endpoints:
  GET /health
  GET /api/v1/governance
  GET /api/v1/proposals[?status=open&settled=false&q=text]
  GET /api/v1/proposals/{id}
  GET /api/v1/proposals/{id}/votes/{address}
  GET /api/v1/depositors/{address}
  GET /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := app.API.Start(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.FormatSuccess(fmt.Sprintf("Serving on http://%s", app.API.Addr())))

			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return app.API.Stop(shutdownCtx)
		},
	}

	cmd.Flags().String("listen", "", "Listen address (defaults to [api].listen or 127.0.0.1:8545)")
	return cmd
}
