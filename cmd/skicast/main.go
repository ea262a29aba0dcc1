package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/alpinewx/skicast/internal/adapter/blob"
	"github.com/alpinewx/skicast/internal/adapter/nws"
	"github.com/alpinewx/skicast/internal/adapter/web"
	"github.com/alpinewx/skicast/internal/config"
	"github.com/alpinewx/skicast/internal/forecast"
	"github.com/alpinewx/skicast/internal/observability"
	"github.com/alpinewx/skicast/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	engine, err := forecast.NewEngine(cfg.Rules, cfg.Schedule, cfg.TZ(), logger)
	if err != nil {
		logger.Error("failed to build engine", "error", err)
		os.Exit(1)
	}

	store, err := blob.Open(cfg.BlobDBPath)
	if err != nil {
		logger.Error("failed to open blob store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	fetcher := nws.NewClient(nws.Config{
		BaseURL:     cfg.NWSBaseURL,
		UserAgent:   cfg.NWSUserAgent,
		Timeout:     cfg.FetchTimeout,
		MaxAttempts: cfg.FetchMaxAttempts,
		Backoff:     cfg.FetchBackoff,
		MaxBackoff:  cfg.FetchMaxBackoff,
		CacheSize:   cfg.EndpointCacheSize,
	}, logger, metrics)

	p := pipeline.New(fetcher, store, engine, cfg.Locations, logger, metrics, nil)
	srv := web.NewServer(cfg.HTTPAddr, p, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// First refresh before the scheduler takes over, so the page is useful
	// as soon as the service is up.
	go func() {
		if err := p.Refresh(ctx); err != nil && ctx.Err() == nil {
			logger.Error("initial refresh failed", "error", err)
		}
	}()

	scheduler := gocron.NewScheduler(time.UTC)
	if _, err := scheduler.Every(cfg.RefreshInterval).Do(func() {
		runCtx, cancel := context.WithTimeout(ctx, cfg.RefreshInterval)
		defer cancel()
		if err := p.Refresh(runCtx); err != nil && ctx.Err() == nil {
			logger.Error("scheduled refresh failed", "error", err)
		}
	}); err != nil {
		logger.Error("failed to schedule refresh", "error", err)
		os.Exit(1)
	}
	scheduler.StartAsync()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
