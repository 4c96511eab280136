package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SourceResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kararbul",
			Name:      "source_results_total",
			Help:      "Per-institution search outcomes",
		},
		[]string{"institution", "outcome"}, // "real" / "fallback" / "rate_limited"
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "kararbul",
			Name:      "search_duration_seconds",
			Help:      "Aggregate search fan-out duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	AnalysisRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kararbul",
			Name:      "analysis_requests_total",
			Help:      "Total number of document analysis requests",
		},
		[]string{"type", "status"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SourceResultsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(AnalysisRequestsTotal)
	searchMetricsRegistered = true
}
