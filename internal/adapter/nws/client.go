// Package nws fetches grid forecasts from the National Weather Service API
// with bounded retries, a circuit breaker, and gridpoint endpoint caching.
package nws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/alpinewx/skicast/internal/forecast"
	"github.com/alpinewx/skicast/internal/observability"
)

// Config bundles the fetch client settings.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// Retry policy: bounded attempts with exponential backoff. Only network
	// errors and 5xx responses are retry-eligible; 4xx responses instead
	// invalidate the cached endpoint and trigger a single re-resolution.
	MaxAttempts int
	Backoff     time.Duration
	MaxBackoff  time.Duration

	CacheSize int
}

// StatusError reports a non-2xx response from the NWS API.
type StatusError struct {
	Status int
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("nws api error: status %d from %s", e.Status, e.URL)
}

// Client fetches grid forecast payloads for locations. It implements
// pipeline.ForecastFetcher.
type Client struct {
	cfg        Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	cache      *lruCache
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an NWS fetch client.
func NewClient(cfg Config, logger *slog.Logger, metrics *observability.Metrics) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "nws",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		cache:      newLRUCache(cfg.CacheSize),
		logger:     logger,
		metrics:    metrics,
	}
}

// FetchGridData returns the raw gridpoints payload for a location. A 4xx on
// a cached gridpoint URL usually means the grid assignment moved, so the
// cached endpoint is dropped, re-resolved, and fetched once more.
func (c *Client) FetchGridData(ctx context.Context, loc forecast.Location) ([]byte, error) {
	key := endpointKey(loc)
	endpoint, cached, err := c.resolveEndpoint(ctx, loc)
	if err != nil {
		return nil, err
	}

	payload, err := c.getWithRetry(ctx, endpoint)
	var statusErr *StatusError
	if err != nil && cached && errors.As(err, &statusErr) && statusErr.Status >= 400 && statusErr.Status < 500 {
		c.logger.Warn("cached gridpoint endpoint rejected, re-resolving",
			"location", loc.ID, "status", statusErr.Status)
		c.cache.drop(key)
		endpoint, _, err = c.resolveEndpoint(ctx, loc)
		if err != nil {
			return nil, err
		}
		payload, err = c.getWithRetry(ctx, endpoint)
	}
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("fetch grid data for %s: %w", loc.ID, err)
	}
	c.metrics.FetchRequests.WithLabelValues("success").Inc()
	return payload, nil
}

func endpointKey(loc forecast.Location) string {
	return fmt.Sprintf("%.4f,%.4f", loc.Lat, loc.Lon)
}

// resolveEndpoint returns the gridpoints URL for a location, from cache when
// possible. The second return reports whether the value came from the cache.
func (c *Client) resolveEndpoint(ctx context.Context, loc forecast.Location) (string, bool, error) {
	key := endpointKey(loc)
	if endpoint, ok := c.cache.get(key); ok {
		c.metrics.EndpointCacheTotal.WithLabelValues("hit").Inc()
		return endpoint, true, nil
	}
	c.metrics.EndpointCacheTotal.WithLabelValues("miss").Inc()

	u := fmt.Sprintf("%s/points/%.4f,%.4f", c.cfg.BaseURL, loc.Lat, loc.Lon)
	body, err := c.getWithRetry(ctx, u)
	if err != nil {
		return "", false, fmt.Errorf("resolve endpoint for %s: %w", loc.ID, err)
	}

	var pt struct {
		Properties struct {
			ForecastGridData string `json:"forecastGridData"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(body, &pt); err != nil {
		return "", false, fmt.Errorf("parse points response for %s: %w", loc.ID, err)
	}
	if pt.Properties.ForecastGridData == "" {
		return "", false, fmt.Errorf("points response for %s has no forecastGridData", loc.ID)
	}

	c.cache.put(key, pt.Properties.ForecastGridData)
	return pt.Properties.ForecastGridData, false, nil
}

// getWithRetry performs a GET with the bounded retry policy, routing each
// attempt through the circuit breaker.
func (c *Client) getWithRetry(ctx context.Context, url string) ([]byte, error) {
	backoff := c.cfg.Backoff
	var lastErr error

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		body, err := c.get(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		// Breaker-open and 4xx failures are not retry-eligible.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, err
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Status < 500 {
			return nil, err
		}

		if attempt == c.cfg.MaxAttempts {
			break
		}
		c.metrics.FetchRetries.Inc()
		c.logger.Warn("fetch attempt failed, retrying",
			"url", url, "attempt", attempt, "backoff", backoff, "error", err)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
		if backoff > c.cfg.MaxBackoff {
			backoff = c.cfg.MaxBackoff
		}
	}
	return nil, lastErr
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.cfg.UserAgent)
		req.Header.Set("Accept", "application/geo+json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			io.Copy(io.Discard, resp.Body) //nolint:errcheck // draining for connection reuse
			return nil, &StatusError{Status: resp.StatusCode, URL: url}
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}
