package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// dashboard service.
type Metrics struct {
	RowsProcessed   prometheus.Counter
	BuildErrors     prometheus.Counter
	BuildDuration   prometheus.Histogram
	LastBuildRows   prometheus.Gauge
	ReferenceLoaded prometheus.Gauge

	// Source fetch metrics.
	FetchRequests *prometheus.CounterVec   // labels: source={dataset,coords}, outcome={success,error}
	FetchDuration *prometheus.HistogramVec // labels: source={dataset,coords}

	// Boundary metrics.
	CacheLookups      *prometheus.CounterVec // labels: result={hit,miss}
	SnapshotFallbacks prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsProcessed,
		m.BuildErrors,
		m.BuildDuration,
		m.LastBuildRows,
		m.ReferenceLoaded,
		m.FetchRequests,
		m.FetchDuration,
		m.CacheLookups,
		m.SnapshotFallbacks,
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
		RowsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "microseq_dashboard",
			Name:      "rows_processed_total",
			Help:      "Total dataset rows aggregated across all builds.",
		}),
		BuildErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "microseq_dashboard",
			Name:      "build_errors_total",
			Help:      "Total failed payload builds.",
		}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "microseq_dashboard",
			Name:      "build_duration_seconds",
			Help:      "Duration of a complete fetch-parse-aggregate build.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		LastBuildRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "microseq_dashboard",
			Name:      "last_build_rows",
			Help:      "Dataset rows in the most recent successful build.",
		}),
		ReferenceLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "microseq_dashboard",
			Name:      "reference_coords_loaded",
			Help:      "Region entries in the reference lookup of the most recent build.",
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "microseq_dashboard",
			Name:      "fetch_requests_total",
			Help:      "Source fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "microseq_dashboard",
			Name:      "fetch_duration_seconds",
			Help:      "Source fetch duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "microseq_dashboard",
			Name:      "cache_lookups_total",
			Help:      "Payload cache lookups by result.",
		}, []string{"result"}),
		SnapshotFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "microseq_dashboard",
			Name:      "snapshot_fallbacks_total",
			Help:      "Dashboard requests served from the precomputed snapshot after a build failure.",
		}),
	}
}
