package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/alpinewx/skicast/internal/forecast"
)

// Config holds all service settings, populated from environment variables.
// The engine and its collaborators receive these as explicit values; nothing
// below this layer reads the process environment.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	Timezone        string
	RefreshInterval time.Duration
	BlobDBPath      string

	// NWS fetch client settings.
	NWSBaseURL        string
	NWSUserAgent      string
	FetchTimeout      time.Duration
	FetchMaxAttempts  int
	FetchBackoff      time.Duration
	FetchMaxBackoff   time.Duration
	EndpointCacheSize int

	Locations []forecast.Location
	Rules     map[forecast.Property]forecast.Rule
	Schedule  forecast.Schedule
}

// defaultLocations is the reference deployment: Washington ski areas.
var defaultLocations = []forecast.Location{
	{ID: "mt-baker", Name: "Mt. Baker", Lat: 48.8570, Lon: -121.6650, Base: 3500, Summit: 5089, Href: "https://www.mtbaker.us"},
	{ID: "loup-loup", Name: "Loup Loup", Lat: 48.3940, Lon: -119.9100, Base: 4020, Summit: 5260, Href: "https://skitheloup.org"},
	{ID: "stevens-pass", Name: "Stevens Pass", Lat: 47.7448, Lon: -121.0890, Base: 4061, Summit: 5845, Href: "https://www.stevenspass.com"},
	{ID: "snoqualmie-pass", Name: "Snoqualmie Pass", Lat: 47.4245, Lon: -121.4132, Base: 3140, Summit: 5420, Href: "https://summitatsnoqualmie.com"},
	{ID: "mission-ridge", Name: "Mission Ridge", Lat: 47.2920, Lon: -120.3996, Base: 4570, Summit: 6820, Href: "https://www.missionridge.com"},
	{ID: "white-pass", Name: "White Pass", Lat: 46.6371, Lon: -121.3915, Base: 4500, Summit: 6550, Href: "https://skiwhitepass.com"},
	{ID: "crystal-mountain", Name: "Crystal Mountain", Lat: 46.9352, Lon: -121.4748, Base: 4400, Summit: 7002, Href: "https://www.crystalmountainresort.com"},
}

// Load reads configuration from the environment (and an optional .env file),
// applying defaults where unset and validating everything that can be
// validated without network access.
func Load() (*Config, error) {
	_ = godotenv.Load() // best effort; absence of a .env file is normal

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parseDuration("REFRESH_INTERVAL", time.Hour)
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	fetchBackoff, err := parseDuration("FETCH_BACKOFF", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}
	fetchMaxBackoff, err := parseDuration("FETCH_MAX_BACKOFF", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		Timezone:        envOrDefault("TIMEZONE", "America/Los_Angeles"),
		RefreshInterval: refreshInterval,
		BlobDBPath:      envOrDefault("BLOB_DB_PATH", "skicast.db"),

		NWSBaseURL:        envOrDefault("NWS_BASE_URL", "https://api.weather.gov"),
		NWSUserAgent:      envOrDefault("NWS_USER_AGENT", "skicast/1.0 (forecast table service)"),
		FetchTimeout:      fetchTimeout,
		FetchMaxAttempts:  envIntOrDefault("FETCH_MAX_ATTEMPTS", 3),
		FetchBackoff:      fetchBackoff,
		FetchMaxBackoff:   fetchMaxBackoff,
		EndpointCacheSize: envIntOrDefault("ENDPOINT_CACHE_SIZE", 100),

		Rules:    forecast.DefaultRules(),
		Schedule: forecast.DefaultSchedule(),
	}

	if err := loadJSONEnv("LOCATIONS", &cfg.Locations); err != nil {
		return nil, err
	}
	if len(cfg.Locations) == 0 {
		cfg.Locations = defaultLocations
	}
	if err := loadJSONEnv("PROPERTIES", &cfg.Rules); err != nil {
		return nil, err
	}
	if err := loadJSONEnv("TIME_PERIODS", &cfg.Schedule); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPAddr == "" {
		return errors.New("HTTP_ADDR is required")
	}
	if c.RefreshInterval <= 0 {
		return errors.New("REFRESH_INTERVAL must be positive")
	}
	if c.FetchMaxAttempts < 1 {
		return errors.New("FETCH_MAX_ATTEMPTS must be at least 1")
	}
	if c.EndpointCacheSize < 1 {
		return errors.New("ENDPOINT_CACHE_SIZE must be at least 1")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	seen := make(map[string]bool, len(c.Locations))
	for _, loc := range c.Locations {
		if err := loc.Validate(); err != nil {
			return err
		}
		if seen[loc.ID] {
			return fmt.Errorf("duplicate location id %q", loc.ID)
		}
		seen[loc.ID] = true
	}
	// Conversion coverage is a startup failure, never a runtime default.
	return forecast.ValidateRules(c.Rules)
}

// TZ returns the configured time zone. validate guarantees it loads.
func (c *Config) TZ() *time.Location {
	tz, err := time.LoadLocation(c.Timezone)
	if err != nil {
		panic(err)
	}
	return tz
}

// LogLevelName implements observability.LoggerConfig.
func (c *Config) LogLevelName() string { return c.LogLevel }

// LogFormatName implements observability.LoggerConfig.
func (c *Config) LogFormatName() string { return c.LogFormat }

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func loadJSONEnv(key string, dst any) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(s), dst); err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	return nil
}
