package service

import "github.com/prometheus/client_golang/prometheus"

var (
	pageCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "channel_insight_page_cache_hits_total",
		Help: "Page cache hits (memory or Redis).",
	})
	pageCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "channel_insight_page_cache_misses_total",
		Help: "Page cache misses that reached the fetch gateway.",
	})
	pageCacheShared = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "channel_insight_page_cache_coalesced_total",
		Help: "Concurrent misses served by another caller's in-flight fetch.",
	})
	demographicFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "channel_insight_demographic_failures_total",
		Help: "Reports assembled without demographics.",
	})
	analyzeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "channel_insight_analyze_duration_seconds",
		Help:    "End-to-end channel analysis duration.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 90},
	}, []string{"outcome"})
)

// Collectors returns the package's Prometheus collectors for registration.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		pageCacheHits,
		pageCacheMisses,
		pageCacheShared,
		demographicFailures,
		analyzeDuration,
	}
}
