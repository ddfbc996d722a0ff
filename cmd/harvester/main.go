// Command harvester polls ReliefWeb for Haiti content, classifies each
// document and stores the results. With HARVEST_INTERVAL unset it runs one
// pass and exits; otherwise it repeats until SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/adapter/httpadapter"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/adapter/reliefweb"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/bootstrap"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/config"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/observability"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/pipeline"
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
	clock := clockwork.NewRealClock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	ingestion := bootstrap.NewIngestion(cfg, store, clock, logger, metrics, pipeline.Options{
		DomainFilter: true,
		ConflictOnly: cfg.HarvestConflictOnly,
	})
	fetcher := reliefweb.NewClient(cfg.ReliefWebBaseURL, cfg.ReliefWebAppName, cfg.ReliefWebTimeout, logger, metrics)
	harvester := pipeline.NewHarvester(fetcher, ingestion.Ingestor, pipeline.HarvestConfig{
		ContentTypes: cfg.HarvestContentTypes,
		Limit:        cfg.HarvestLimit,
		Interval:     cfg.HarvestInterval,
		RequestDelay: cfg.HarvestRequestDelay,
	}, clock, logger, metrics)

	var srv *httpadapter.Server
	if cfg.HarvestInterval > 0 {
		srv = httpadapter.NewServer(cfg.HTTPAddr, logger, store, harvester)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	if err := harvester.Run(ctx); err != nil {
		logger.Error("harvester error", "error", err)
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}
	if err := ingestion.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if n, err := store.CountReports(shutdownCtx); err == nil {
		logger.Info("shutdown complete", "total_reports", n)
	}
}
