package cli

import (
	"context"
	"time"

	"github.com/compozy/hybridqa/engine/infra/monitoring"
	"github.com/compozy/hybridqa/engine/infra/server"
	"github.com/compozy/hybridqa/pkg/logger"
	"github.com/spf13/cobra"
)

const monitoringShutdownTimeout = 5 * time.Second

// ServeCmd exposes the engine over HTTP.
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the answer API over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().String("host", "", "Host interface for the server to bind to")
	cmd.Flags().Int("port", 0, "Port for the server to listen on")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := appConfig(cmd)
	log := logger.FromContext(ctx)
	engine, cleanup, err := buildEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	mon := monitoring.NewServiceWithFallback(ctx, monitoring.FromAppConfig(&cfg.Server.Metrics))
	mon.SetAsGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), monitoringShutdownTimeout)
		defer cancel()
		if err := mon.Shutdown(shutdownCtx); err != nil {
			log.Warn("Failed to shutdown monitoring", "error", err)
		}
	}()
	srv, err := server.NewServer(ctx, &cfg.Server, engine, mon)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
