package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for dataset loading and the HTTP API.
type Metrics struct {
	// Dataset metrics.
	DatasetLoads  *prometheus.CounterVec   // labels: family={environment,growth}, outcome={success,error}
	CacheLookups  *prometheus.CounterVec   // labels: family={environment,growth,dataset}, result={hit,miss}
	LoadDuration  *prometheus.HistogramVec // labels: family
	DatasetGroups *prometheus.GaugeVec     // labels: family
	DatasetRows   *prometheus.GaugeVec     // labels: family

	// HTTP metrics.
	HTTPRequests *prometheus.CounterVec   // labels: route, code
	HTTPDuration *prometheus.HistogramVec // labels: route
	Exports      *prometheus.CounterVec   // labels: file
}

const namespace = "ecboard"

func newMetrics() *Metrics {
	return &Metrics{
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "Dataset family reads from disk by outcome.",
		}, []string{"family", "outcome"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_cache_lookups_total",
			Help:      "Loader memo lookups by family and result.",
		}, []string{"family", "result"}),
		LoadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Time spent reading and parsing a dataset family.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"family"}),
		DatasetGroups: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_groups",
			Help:      "Groups present in the active dataset.",
		}, []string{"family"}),
		DatasetRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Rows across all groups in the active dataset.",
		}, []string{"family"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}, []string{"route"}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Combined export downloads by file.",
		}, []string{"file"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.DatasetLoads,
		m.CacheLookups,
		m.LoadDuration,
		m.DatasetGroups,
		m.DatasetRows,
		m.HTTPRequests,
		m.HTTPDuration,
		m.Exports,
	)
	return m
}

// NewMetricsForTesting creates unregistered metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
