package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loggerConfig struct {
	level  string
	format string
}

func (c loggerConfig) LogLevelName() string  { return c.level }
func (c loggerConfig) LogFormatName() string { return c.format }

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level   string
		debugOn bool
		infoOn  bool
		warnOn  bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"warn", false, false, true},
		{"error", false, false, false},
		{"bogus", false, true, true}, // unknown falls back to info
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := NewLogger(loggerConfig{level: tt.level, format: "json"})
			require.NotNil(t, logger)
			ctx := context.Background()
			assert.Equal(t, tt.debugOn, logger.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.infoOn, logger.Enabled(ctx, slog.LevelInfo))
			assert.Equal(t, tt.warnOn, logger.Enabled(ctx, slog.LevelWarn))
		})
	}
}

func TestNewMetricsForTesting(t *testing.T) {
	// Unregistered metrics can be constructed repeatedly without panicking.
	m1 := NewMetricsForTesting()
	m2 := NewMetricsForTesting()
	require.NotNil(t, m1.RefreshCycles)
	require.NotNil(t, m2.SamplesDropped)

	m1.RefreshCycles.Inc()
	m1.SamplesDropped.WithLabelValues("malformed").Add(3)
	m1.EndpointCacheTotal.WithLabelValues("hit").Inc()
}
