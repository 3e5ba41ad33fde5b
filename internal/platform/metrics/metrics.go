package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, route pattern and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path"},
	)

	// SolveRuns counts pipeline runs by outcome.
	SolveRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "solve_runs_total", Help: "Batch solve pipeline runs by outcome."},
		[]string{"outcome"},
	)
	// SolveDuration records end-to-end pipeline durations in seconds.
	SolveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "solve_duration_seconds", Help: "Batch solve pipeline duration in seconds.", Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300, 600}},
	)

	// MatrixRequests counts outbound distance matrix requests by result.
	MatrixRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "distance_matrix_requests_total", Help: "Outbound distance matrix requests by result."},
		[]string{"result"},
	)
	// MatrixCacheRows counts origin rows served from or missed in the distance cache.
	MatrixCacheRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "distance_matrix_cache_rows_total", Help: "Distance matrix origin rows by cache result."},
		[]string{"result"},
	)
)

// RegisterDefault registers all collectors on Registry once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(SolveRuns)
		Registry.MustRegister(SolveDuration)
		Registry.MustRegister(MatrixRequests)
		Registry.MustRegister(MatrixCacheRows)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
