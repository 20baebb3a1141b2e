package server

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/njchilds90/gomx/internal/config"
	"github.com/njchilds90/gomx/internal/telemetry"
)

// Serve installs tracing, then runs the tool server until ctx is cancelled
// or the process receives SIGINT or SIGTERM.
func Serve(ctx context.Context, cfg config.Config, logger *slog.Logger, version string) error {
	shutdown, err := telemetry.Init(ctx, cfg.Telemetry, version)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown trace exporter", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return New(cfg, logger).Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("stop requested", "cause", context.Cause(gctx))
		return nil
	})
	return g.Wait()
}
