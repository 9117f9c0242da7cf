package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "uscrn_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the collector.
type Metrics struct {
	// Fetcher metrics.
	HTTPRequests        *prometheus.CounterVec // labels: outcome={success,status,error,breaker_open}
	HTTPRequestDuration prometheus.Histogram
	HTTPRetries         prometheus.Counter

	// Collection metrics.
	Stations        *prometheus.CounterVec // labels: outcome={success,failure}
	Years           *prometheus.CounterVec // labels: outcome={success,failure}
	BatchSize       prometheus.Histogram
	BatchDuration   prometheus.Histogram
	LabelCollisions prometheus.Counter

	// Run metrics.
	CommonStations prometheus.Gauge
	RunDuration    prometheus.Histogram
	RunRunning     prometheus.Gauge
}

// NewMetrics creates and registers all collector metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.HTTPRequests,
		m.HTTPRequestDuration,
		m.HTTPRetries,
		m.Stations,
		m.Years,
		m.BatchSize,
		m.BatchDuration,
		m.LabelCollisions,
		m.CommonStations,
		m.RunDuration,
		m.RunRunning,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Upstream GET attempts by outcome.",
		}, []string{"outcome"}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of a single upstream GET attempt including the body read.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		HTTPRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_retries_total",
			Help:      "Upstream GET attempts that were retries.",
		}),
		Stations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stations_total",
			Help:      "Station files processed by outcome.",
		}, []string{"outcome"}),
		Years: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "years_total",
			Help:      "Years collected by outcome.",
		}, []string{"outcome"}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of station files per batch.",
			Buckets:   []float64{1, 5, 10, 20, 50, 100, 250},
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time to fetch and parse one batch.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		LabelCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "label_collisions_total",
			Help:      "Station files whose truncated label replaced an earlier station.",
		}),
		CommonStations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "common_stations",
			Help:      "Stations present in every year after the last reconciliation.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete collect-reconcile-persist run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		RunRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_running",
			Help:      "1 while a collection run is active, 0 otherwise.",
		}),
	}
}
