// Package pipeline orchestrates a forecast refresh cycle: fetch each
// location's grid forecast, persist the raw blob, aggregate, classify, and
// render the weekly table.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/alpinewx/skicast/internal/forecast"
	"github.com/alpinewx/skicast/internal/observability"
	"github.com/alpinewx/skicast/internal/table"
)

// TableBlobName is the blob store key for the latest rendered table.
const TableBlobName = "table.json"

// ForecastFetcher retrieves the raw gridpoints payload for a location.
type ForecastFetcher interface {
	FetchGridData(ctx context.Context, loc forecast.Location) ([]byte, error)
}

// BlobStore persists raw forecast payloads and the rendered table.
type BlobStore interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
}

// Pipeline runs refresh cycles. Locations are processed sequentially; a
// failure in one location is logged and counted but never aborts the cycle.
type Pipeline struct {
	fetcher   ForecastFetcher
	store     BlobStore
	engine    *forecast.Engine
	renderer  *table.Renderer
	locations []forecast.Location
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock

	mu     sync.RWMutex
	latest *table.Table
	ready  atomic.Bool
}

// New creates a Pipeline. Pass a fake clock in tests for deterministic
// reference times.
func New(fetcher ForecastFetcher, store BlobStore, engine *forecast.Engine, locations []forecast.Location,
	logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Pipeline {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		fetcher:   fetcher,
		store:     store,
		engine:    engine,
		renderer:  table.NewRenderer(engine.Schedule(), engine.TZ()),
		locations: locations,
		logger:    logger,
		metrics:   metrics,
		clock:     clock,
	}
}

// CheckReadiness returns nil once at least one refresh cycle has produced a
// table.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no refresh cycle has completed yet")
	}
	return nil
}

// Latest returns the most recently rendered table, or nil before the first
// completed cycle.
func (p *Pipeline) Latest() *table.Table {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest
}

// Refresh runs one full cycle over all configured locations and publishes the
// resulting table. Aggregation is recomputed from scratch against a single
// reference time, so repeated runs over identical payloads produce identical
// tables.
func (p *Pipeline) Refresh(ctx context.Context) error {
	start := time.Now()
	ref := p.clock.Now()
	p.metrics.RefreshRunning.Set(1)
	defer p.metrics.RefreshRunning.Set(0)

	p.logger.Info("refresh cycle started", "locations", len(p.locations), "reference", ref)

	rows := make([]table.Row, 0, len(p.locations))
	for _, loc := range p.locations {
		row, err := p.processLocation(ctx, loc, ref)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.metrics.LocationFailures.Inc()
			p.logger.Error("location omitted from table", "location", loc.ID, "error", err)
			continue
		}
		p.metrics.LocationsProcessed.Inc()
		rows = append(rows, row)
	}

	tbl := p.renderer.Build(ref, rows)
	data, err := json.Marshal(tbl)
	if err != nil {
		return fmt.Errorf("marshal table: %w", err)
	}
	if err := p.store.Write(ctx, TableBlobName, data); err != nil {
		p.logger.Error("persist table failed", "error", err)
	}

	p.mu.Lock()
	p.latest = &tbl
	p.mu.Unlock()
	p.ready.Store(true)

	p.metrics.RefreshCycles.Inc()
	p.metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("refresh cycle complete",
		"rows", len(rows), "failed", len(p.locations)-len(rows), "duration", time.Since(start))
	return nil
}

// processLocation produces one table row. Any panic while processing a
// location is converted into an error at this boundary so one bad payload
// cannot take down the whole cycle.
func (p *Pipeline) processLocation(ctx context.Context, loc forecast.Location, ref time.Time) (row table.Row, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic processing %s: %v", loc.ID, r)
		}
	}()

	gd, err := p.loadGridData(ctx, loc)
	if err != nil {
		return table.Row{}, err
	}

	aggs, stats, err := p.engine.Aggregate(gd, loc, ref)
	if err != nil {
		return table.Row{}, err
	}
	p.recordStats(stats)

	return p.renderer.Row(loc, aggs, ref, ref), nil
}

// loadGridData fetches a fresh payload and persists it, falling back to the
// last stored blob when the fetch fails so a transient NWS outage degrades to
// slightly stale data instead of a missing row.
func (p *Pipeline) loadGridData(ctx context.Context, loc forecast.Location) (forecast.GridData, error) {
	payload, fetchErr := p.fetcher.FetchGridData(ctx, loc)
	if fetchErr == nil {
		gd, err := forecast.BuildGridData(loc, payload)
		if err != nil {
			return forecast.GridData{}, err
		}
		blob, err := json.Marshal(gd)
		if err != nil {
			return forecast.GridData{}, fmt.Errorf("marshal grid data for %s: %w", loc.ID, err)
		}
		if err := p.store.Write(ctx, loc.BlobName(), blob); err != nil {
			p.logger.Warn("persist grid data failed", "location", loc.ID, "error", err)
		}
		return gd, nil
	}

	p.logger.Warn("fetch failed, trying stored blob", "location", loc.ID, "error", fetchErr)
	blob, readErr := p.store.Read(ctx, loc.BlobName())
	if readErr != nil {
		return forecast.GridData{}, fmt.Errorf("fetch failed (%v) and no stored blob: %w", fetchErr, readErr)
	}
	return forecast.ParseGridData(blob)
}

func (p *Pipeline) recordStats(stats forecast.CollectStats) {
	p.metrics.MissingProperties.Add(float64(len(stats.MissingProperties)))
	p.metrics.EmptyBuckets.Add(float64(stats.EmptyBuckets))
	if stats.MalformedDropped > 0 {
		p.metrics.SamplesDropped.WithLabelValues("malformed").Add(float64(stats.MalformedDropped))
	}
	if stats.OutOfWindow > 0 {
		p.metrics.SamplesDropped.WithLabelValues("out_of_window").Add(float64(stats.OutOfWindow))
	}
}
