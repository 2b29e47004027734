package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Catalog client metrics
	catalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_finder_catalog_requests_total",
			Help: "Total number of catalog API calls by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)
	catalogDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_finder_catalog_request_duration_seconds",
			Help:    "Duration of catalog API calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15},
		},
		[]string{"endpoint"},
	)

	// Lookup cache metrics
	cacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipe_finder_lookup_cache_hits_total",
			Help: "Total number of catalog lookups served from cache",
		},
	)
	cacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipe_finder_lookup_cache_misses_total",
			Help: "Total number of catalog lookups that missed the cache",
		},
	)

	// Search cascade metrics
	resolveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recipe_finder_resolve_duration_seconds",
			Help:    "Duration of a full search resolution in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
	strategyHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_finder_strategy_results_total",
			Help: "Total number of resolutions by the strategy that produced the results",
		},
		[]string{"strategy"},
	)
	staleResolutions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipe_finder_stale_resolutions_total",
			Help: "Total number of resolutions discarded because a newer one was issued",
		},
	)
)

// ObserveCatalogCall records one catalog API call.
func ObserveCatalogCall(endpoint, outcome string, d time.Duration) {
	catalogRequests.WithLabelValues(endpoint, outcome).Inc()
	catalogDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// CacheHit records a lookup served from cache.
func CacheHit() { cacheHits.Inc() }

// CacheMiss records a lookup that went to the catalog.
func CacheMiss() { cacheMisses.Inc() }

// ObserveResolve records a finished resolution. strategy is empty when
// the cascade produced nothing.
func ObserveResolve(strategy string, d time.Duration) {
	resolveDuration.Observe(d.Seconds())
	if strategy == "" {
		strategy = "none"
	}
	strategyHits.WithLabelValues(strategy).Inc()
}

// StaleResolution records a superseded resolution.
func StaleResolution() { staleResolutions.Inc() }
