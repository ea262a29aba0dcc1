package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpinewx/skicast/internal/forecast"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "America/Los_Angeles", cfg.Timezone)
	assert.Equal(t, time.Hour, cfg.RefreshInterval)
	assert.Equal(t, 3, cfg.FetchMaxAttempts)
	assert.Equal(t, "https://api.weather.gov", cfg.NWSBaseURL)
	assert.Equal(t, forecast.DefaultSchedule(), cfg.Schedule)

	require.Len(t, cfg.Locations, 7)
	assert.Equal(t, "mt-baker", cfg.Locations[0].ID)
	assert.Equal(t, "crystal-mountain", cfg.Locations[6].ID)

	require.NotNil(t, cfg.TZ())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REFRESH_INTERVAL", "30m")
	t.Setenv("FETCH_MAX_ATTEMPTS", "5")
	t.Setenv("TIMEZONE", "America/Denver")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 5, cfg.FetchMaxAttempts)
	assert.Equal(t, "America/Denver", cfg.Timezone)
}

func TestLoad_LocationsFromEnv(t *testing.T) {
	t.Setenv("LOCATIONS", `[
		{"id": "hood", "name": "Mt. Hood Meadows", "lat": 45.3322, "lon": -121.6650, "base": 4523, "summit": 7305}
	]`)

	cfg, err := Load()
	require.NoError(t, err)
	require.Len(t, cfg.Locations, 1)
	assert.Equal(t, "hood", cfg.Locations[0].ID)
	assert.Equal(t, 7305.0, cfg.Locations[0].Summit)
}

func TestLoad_ScheduleFromEnv(t *testing.T) {
	t.Setenv("TIME_PERIODS", `{"dayStartHour": 5, "amEndHour": 11, "pmEndHour": 17, "detailDays": 2}`)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, forecast.Schedule{DayStartHour: 5, AMEndHour: 11, PMEndHour: 17, DetailDays: 2}, cfg.Schedule)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad timezone", "TIMEZONE", "Mars/Olympus_Mons"},
		{"bad refresh interval", "REFRESH_INTERVAL", "sometimes"},
		{"negative refresh interval", "REFRESH_INTERVAL", "-5m"},
		{"malformed locations json", "LOCATIONS", "{not json"},
		{"duplicate location ids", "LOCATIONS", `[
			{"id": "x", "name": "A", "lat": 47, "lon": -121, "base": 3000, "summit": 5000},
			{"id": "x", "name": "B", "lat": 47, "lon": -121, "base": 3000, "summit": 5000}
		]`},
		{"location summit below base", "LOCATIONS", `[
			{"id": "x", "name": "A", "lat": 47, "lon": -121, "base": 5000, "summit": 3000}
		]`},
		{"rules without reducers", "PROPERTIES", `{"temperature": {"target": "degF", "reducers": []}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
		})
	}
}
