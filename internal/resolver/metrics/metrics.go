package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the resolver module. Tracks resolution
// counts, cache effectiveness, and critical path durations.
type Metrics struct {
	Resolutions     *prometheus.CounterVec
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	WalkTruncations prometheus.Counter
	ResolveDuration prometheus.Histogram
}

// New creates a Metrics instance with all resolver module metrics registered.
func New() *Metrics {
	return &Metrics{
		Resolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "docshost_resolutions_total",
			Help: "Total URL resolutions by kind (url, path, domain)",
		}, []string{"kind"}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "docshost_resolve_cache_hits_total",
			Help: "Resolved URLs served from cache",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "docshost_resolve_cache_misses_total",
			Help: "Resolved URLs computed on a cache miss",
		}),
		WalkTruncations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "docshost_resolve_walk_truncations_total",
			Help: "Path resolutions whose hierarchy walk hit the depth limit",
		}),
		ResolveDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "docshost_resolve_duration_seconds",
			Help:    "Duration of full URL resolutions (serving critical path)",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
	}
}

// ObserveResolve records the duration of a full resolution.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveResolve(start time.Time) {
	m.ResolveDuration.Observe(time.Since(start).Seconds())
}
