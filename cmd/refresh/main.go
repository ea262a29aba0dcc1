// Command refresh runs a single forecast refresh cycle and writes the
// rendered table JSON to stdout or a file. Useful for cron-style deployments
// and for inspecting the table without running the service.
//
// Usage:
//
//	go run ./cmd/refresh [-out table.json] [-offline]
//
// With -offline the NWS API is not contacted; the cycle runs entirely from
// blobs already present in the store.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/alpinewx/skicast/internal/adapter/blob"
	"github.com/alpinewx/skicast/internal/adapter/nws"
	"github.com/alpinewx/skicast/internal/config"
	"github.com/alpinewx/skicast/internal/forecast"
	"github.com/alpinewx/skicast/internal/observability"
	"github.com/alpinewx/skicast/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		slog.Error("refresh failed", "error", err)
		os.Exit(1)
	}
}

// offlineFetcher always fails, forcing the pipeline onto stored blobs.
type offlineFetcher struct{}

func (offlineFetcher) FetchGridData(context.Context, forecast.Location) ([]byte, error) {
	return nil, errors.New("offline mode")
}

func run() error {
	out := flag.String("out", "", "write table JSON to this file instead of stdout")
	offline := flag.Bool("offline", false, "skip fetching; use stored blobs only")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetricsForTesting() // one-shot run, nothing scrapes these

	engine, err := forecast.NewEngine(cfg.Rules, cfg.Schedule, cfg.TZ(), logger)
	if err != nil {
		return err
	}

	store, err := blob.Open(cfg.BlobDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	var fetcher pipeline.ForecastFetcher
	if *offline {
		fetcher = offlineFetcher{}
	} else {
		fetcher = nws.NewClient(nws.Config{
			BaseURL:     cfg.NWSBaseURL,
			UserAgent:   cfg.NWSUserAgent,
			Timeout:     cfg.FetchTimeout,
			MaxAttempts: cfg.FetchMaxAttempts,
			Backoff:     cfg.FetchBackoff,
			MaxBackoff:  cfg.FetchMaxBackoff,
			CacheSize:   cfg.EndpointCacheSize,
		}, logger, metrics)
	}

	p := pipeline.New(fetcher, store, engine, cfg.Locations, logger, metrics, nil)
	if err := p.Refresh(context.Background()); err != nil {
		return err
	}

	tbl := p.Latest()
	data, err := json.MarshalIndent(tbl, "", "  ")
	if err != nil {
		return err
	}

	if *out != "" {
		return os.WriteFile(*out, data, 0o644)
	}
	fmt.Println(string(data))
	return nil
}
