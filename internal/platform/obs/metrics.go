package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine-level Prometheus collectors, registered on the default registry
// and exposed by the API's /metrics handler.
var (
	OptimizationRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "schedopt_optimization_runs_total",
		Help: "Optimization runs started, by strategy.",
	}, []string{"strategy"})

	ConflictsResolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "schedopt_conflicts_resolved_total",
		Help: "Schedule groups shifted off committed calendar dates.",
	})

	GeoFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "schedopt_geo_fallback_legs_total",
		Help: "Route legs priced by the textual fallback estimator.",
	})

	opDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schedopt_operation_duration_seconds",
		Help:    "Duration of timed internal operations.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
)
