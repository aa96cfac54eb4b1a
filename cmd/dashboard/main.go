// Command dashboard serves the environmental sequencing dashboard API:
// it fetches the dataset TSV and the province coordinate CSV, aggregates
// them into the dashboard payload, and serves the payload as JSON with a
// short shared-cache window.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/microseq-dashboard/internal/adapter/httpapi"
	"github.com/couchcryptid/microseq-dashboard/internal/adapter/snapshot"
	"github.com/couchcryptid/microseq-dashboard/internal/adapter/source"
	"github.com/couchcryptid/microseq-dashboard/internal/config"
	"github.com/couchcryptid/microseq-dashboard/internal/domain"
	"github.com/couchcryptid/microseq-dashboard/internal/observability"
	"github.com/couchcryptid/microseq-dashboard/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	datasetFetcher := source.NewHTTPFetcher("dataset", cfg.DatasetURL, cfg.FetchTimeout, logger)

	var referenceFetcher pipeline.Fetcher
	if cfg.CoordsURL != "" {
		referenceFetcher = source.NewHTTPFetcher("coords", cfg.CoordsURL, cfg.FetchTimeout, logger)
	} else {
		logger.Info("no reference coordinate source configured, coordinate fallback disabled")
	}

	opts := domain.Options{
		BreakdownField: cfg.BreakdownField,
		BreakdownLimit: cfg.BreakdownLimit,
	}
	svc := pipeline.New(datasetFetcher, referenceFetcher, opts, logger, metrics)
	cache := pipeline.NewCache(svc, cfg.CacheTTL, clockwork.NewRealClock(), metrics)
	snapshots := snapshot.NewStore(cfg.SnapshotPath)

	srv := httpapi.NewServer(cfg.HTTPAddr, cache, snapshots, svc, cfg.CacheTTL, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Warm the cache so the first request doesn't pay for the build.
	go func() {
		if _, err := cache.Get(ctx); err != nil {
			logger.Warn("initial payload build failed", "error", err)
		}
	}()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
