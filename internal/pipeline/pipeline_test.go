package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpinewx/skicast/internal/adapter/blob"
	"github.com/alpinewx/skicast/internal/forecast"
	"github.com/alpinewx/skicast/internal/observability"
	"github.com/alpinewx/skicast/internal/table"
)

// fakeFetcher serves canned payloads per location and fails the rest.
type fakeFetcher struct {
	payloads map[string][]byte
	calls    int
}

func (f *fakeFetcher) FetchGridData(_ context.Context, loc forecast.Location) ([]byte, error) {
	f.calls++
	payload, ok := f.payloads[loc.ID]
	if !ok {
		return nil, fmt.Errorf("no forecast for %s", loc.ID)
	}
	return payload, nil
}

// failStore wraps a memory store and fails writes for chosen names.
type failStore struct {
	*blob.MemoryStore
	failWrites map[string]bool
}

func (s *failStore) Write(ctx context.Context, name string, data []byte) error {
	if s.failWrites[name] {
		return errors.New("disk full")
	}
	return s.MemoryStore.Write(ctx, name, data)
}

func testLocations() []forecast.Location {
	return []forecast.Location{
		{ID: "baker", Name: "Mt. Baker", Lat: 48.86, Lon: -121.68, Base: 3500, Summit: 5089},
		{ID: "crystal", Name: "Crystal Mountain", Lat: 46.94, Lon: -121.47, Base: 4400, Summit: 7002},
	}
}

func testPayload(t *testing.T, start time.Time) []byte {
	t.Helper()
	type val struct {
		ValidTime string  `json:"validTime"`
		Value     float64 `json:"value"`
	}
	series := func(base, step float64) []val {
		out := make([]val, 0, 14)
		for h := 0; h < 7*24; h += 12 {
			out = append(out, val{
				ValidTime: start.Add(time.Duration(h) * time.Hour).Format(time.RFC3339) + "/PT12H",
				Value:     base + step*float64(h%24)/24,
			})
		}
		return out
	}
	payload := map[string]any{
		"properties": map[string]any{
			"temperature": map[string]any{"uom": "wmoUnit:degC", "values": series(-6, 4)},
			"windSpeed":   map[string]any{"uom": "wmoUnit:km_h-1", "values": series(18, 6)},
		},
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return data
}

func testPipeline(t *testing.T, fetcher ForecastFetcher, store BlobStore, ref time.Time) *Pipeline {
	t.Helper()
	tz, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine, err := forecast.NewEngine(nil, forecast.DefaultSchedule(), tz, logger)
	require.NoError(t, err)
	return New(fetcher, store, engine, testLocations(),
		logger, observability.NewMetricsForTesting(),
		clockwork.NewFakeClockAt(ref))
}

func TestRefresh_HappyPath(t *testing.T) {
	ref := time.Date(2026, 1, 5, 15, 0, 0, 0, time.UTC) // 07:00 Pacific
	fetcher := &fakeFetcher{payloads: map[string][]byte{
		"baker":   testPayload(t, ref),
		"crystal": testPayload(t, ref),
	}}
	store := blob.NewMemoryStore()
	p := testPipeline(t, fetcher, store, ref)

	require.Error(t, p.CheckReadiness(context.Background()))
	require.Nil(t, p.Latest())

	require.NoError(t, p.Refresh(context.Background()))

	require.NoError(t, p.CheckReadiness(context.Background()))
	tbl := p.Latest()
	require.NotNil(t, tbl)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "Mt. Baker", tbl.Rows[0].Header.Display)
	assert.Equal(t, "Crystal Mountain", tbl.Rows[1].Header.Display)

	// Raw blobs and the rendered table were persisted.
	_, err := store.Read(context.Background(), "baker_gridData.json")
	require.NoError(t, err)
	stored, err := store.Read(context.Background(), TableBlobName)
	require.NoError(t, err)

	var persisted table.Table
	require.NoError(t, json.Unmarshal(stored, &persisted))
	assert.Len(t, persisted.Rows, 2)
}

func TestRefresh_FailedLocationOmitted(t *testing.T) {
	ref := time.Date(2026, 1, 5, 15, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{payloads: map[string][]byte{
		"baker": testPayload(t, ref),
		// crystal has no payload and no stored blob to fall back on.
	}}
	p := testPipeline(t, fetcher, blob.NewMemoryStore(), ref)

	require.NoError(t, p.Refresh(context.Background()))

	tbl := p.Latest()
	require.NotNil(t, tbl)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "Mt. Baker", tbl.Rows[0].Header.Display)
}

func TestRefresh_FallsBackToStoredBlob(t *testing.T) {
	ref := time.Date(2026, 1, 5, 15, 0, 0, 0, time.UTC)
	store := blob.NewMemoryStore()

	// Seed crystal's blob as if a previous cycle fetched it.
	seeded := &fakeFetcher{payloads: map[string][]byte{
		"baker":   testPayload(t, ref),
		"crystal": testPayload(t, ref),
	}}
	p := testPipeline(t, seeded, store, ref)
	require.NoError(t, p.Refresh(context.Background()))

	// Next cycle the NWS fetch fails for everything; rows still render from
	// the stored blobs.
	p = testPipeline(t, &fakeFetcher{}, store, ref)
	require.NoError(t, p.Refresh(context.Background()))

	tbl := p.Latest()
	require.NotNil(t, tbl)
	assert.Len(t, tbl.Rows, 2)
}

func TestRefresh_MalformedPayloadOmitsRow(t *testing.T) {
	ref := time.Date(2026, 1, 5, 15, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{payloads: map[string][]byte{
		"baker":   []byte("not json at all"),
		"crystal": testPayload(t, ref),
	}}
	p := testPipeline(t, fetcher, blob.NewMemoryStore(), ref)

	require.NoError(t, p.Refresh(context.Background()))

	tbl := p.Latest()
	require.NotNil(t, tbl)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "Crystal Mountain", tbl.Rows[0].Header.Display)
}

func TestRefresh_TableWriteFailureStillPublishes(t *testing.T) {
	ref := time.Date(2026, 1, 5, 15, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{payloads: map[string][]byte{
		"baker":   testPayload(t, ref),
		"crystal": testPayload(t, ref),
	}}
	store := &failStore{
		MemoryStore: blob.NewMemoryStore(),
		failWrites:  map[string]bool{TableBlobName: true},
	}
	p := testPipeline(t, fetcher, store, ref)

	// Persisting the table is best-effort; the in-memory copy still serves.
	require.NoError(t, p.Refresh(context.Background()))
	require.NotNil(t, p.Latest())
	require.NoError(t, p.CheckReadiness(context.Background()))
}

func TestRefresh_Idempotent(t *testing.T) {
	ref := time.Date(2026, 1, 5, 15, 0, 0, 0, time.UTC)
	payloads := map[string][]byte{
		"baker":   testPayload(t, ref),
		"crystal": testPayload(t, ref),
	}
	p := testPipeline(t, &fakeFetcher{payloads: payloads}, blob.NewMemoryStore(), ref)

	require.NoError(t, p.Refresh(context.Background()))
	first := p.Latest()
	require.NoError(t, p.Refresh(context.Background()))
	second := p.Latest()

	// Same payloads and reference time must yield an identical table.
	assert.Empty(t, cmp.Diff(first, second))
}

func TestRefresh_ContextCancelled(t *testing.T) {
	ref := time.Date(2026, 1, 5, 15, 0, 0, 0, time.UTC)
	p := testPipeline(t, &fakeFetcher{}, blob.NewMemoryStore(), ref)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Refresh(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Error(t, p.CheckReadiness(context.Background()))
}
