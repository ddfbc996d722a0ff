// Command dashboard serves the read-only analytics dashboard over the
// reports database.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/bootstrap"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/config"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/dashboard"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/observability"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	srv := dashboard.NewServer(cfg.DashboardAddr, store, clockwork.NewRealClock(), logger, metrics)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("dashboard server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("dashboard shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}
