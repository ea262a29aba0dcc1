package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// forecast refresh pipeline and the NWS fetch client.
type Metrics struct {
	RefreshCycles      prometheus.Counter
	RefreshDuration    prometheus.Histogram
	RefreshRunning     prometheus.Gauge
	LocationsProcessed prometheus.Counter
	LocationFailures   prometheus.Counter

	// Data quality metrics.
	MissingProperties prometheus.Counter
	EmptyBuckets      prometheus.Counter
	SamplesDropped    *prometheus.CounterVec // labels: reason={malformed,out_of_window}

	// Fetch client metrics.
	FetchRequests      *prometheus.CounterVec // labels: outcome={success,error}
	FetchRetries       prometheus.Counter
	EndpointCacheTotal *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RefreshCycles,
		m.RefreshDuration,
		m.RefreshRunning,
		m.LocationsProcessed,
		m.LocationFailures,
		m.MissingProperties,
		m.EmptyBuckets,
		m.SamplesDropped,
		m.FetchRequests,
		m.FetchRetries,
		m.EndpointCacheTotal,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RefreshCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skicast",
			Name:      "refresh_cycles_total",
			Help:      "Total completed forecast refresh cycles.",
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "skicast",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete refresh cycle across all locations.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		RefreshRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "skicast",
			Name:      "refresh_running",
			Help:      "1 while a refresh cycle is in progress.",
		}),
		LocationsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skicast",
			Name:      "locations_processed_total",
			Help:      "Total locations successfully rendered into table rows.",
		}),
		LocationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skicast",
			Name:      "location_failures_total",
			Help:      "Total locations omitted from the table due to processing failures.",
		}),
		MissingProperties: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skicast",
			Name:      "missing_properties_total",
			Help:      "Total tracked properties absent from upstream payloads.",
		}),
		EmptyBuckets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skicast",
			Name:      "empty_buckets_total",
			Help:      "Total buckets resolved to the missing-data sentinel.",
		}),
		SamplesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skicast",
			Name:      "samples_dropped_total",
			Help:      "Raw samples dropped during bucketing by reason.",
		}, []string{"reason"}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skicast",
			Name:      "fetch_requests_total",
			Help:      "NWS fetch attempts by outcome.",
		}, []string{"outcome"}),
		FetchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skicast",
			Name:      "fetch_retries_total",
			Help:      "Total NWS fetch retries after a failed attempt.",
		}),
		EndpointCacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skicast",
			Name:      "endpoint_cache_total",
			Help:      "Gridpoint endpoint cache lookups by result.",
		}, []string{"result"}),
	}
}
