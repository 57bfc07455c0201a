package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the insights aggregation
// service. Metrics are organized by subsystem: source searches, dedup,
// expert-content federation, cache, aggregation runs, and HTTP requests.
// All counters and histograms are registered via promauto against the
// provided registerer.
type Metrics struct {
	// SearchesStarted counts searches initiated, labeled by family ("research"
	// or "expert") and provider name.
	SearchesStarted *prometheus.CounterVec

	// SearchesCompleted counts successful searches, labeled by family and provider.
	SearchesCompleted *prometheus.CounterVec

	// SearchesFailed counts failed searches, labeled by family and provider.
	SearchesFailed *prometheus.CounterVec

	// SearchDuration observes per-provider search duration in seconds.
	SearchDuration *prometheus.HistogramVec

	// ResultsPerSearch observes the number of items one provider returned.
	ResultsPerSearch *prometheus.HistogramVec

	// DuplicatesRemoved counts records dropped by the deduplicator.
	DuplicatesRemoved prometheus.Counter

	// CuratedFallbackServed counts federation runs where curated items were
	// the only output because every live provider failed.
	CuratedFallbackServed prometheus.Counter

	// CacheHits counts aggregation cache hits, labeled by family.
	CacheHits *prometheus.CounterVec

	// CacheMisses counts aggregation cache misses, labeled by family.
	CacheMisses *prometheus.CounterVec

	// AggregationsTotal counts facade calls, labeled by operation
	// (search, expert_content, insights).
	AggregationsTotal *prometheus.CounterVec

	// AggregationDuration observes end-to-end facade call duration in seconds,
	// labeled by operation.
	AggregationDuration *prometheus.HistogramVec

	// InternalFaults counts panics recovered at the facade boundary.
	InternalFaults prometheus.Counter

	// HTTPRequestsTotal counts HTTP requests, labeled by method, route, and status.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration observes HTTP request duration in seconds, labeled
	// by method and route.
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a Metrics instance registered with the default
// Prometheus registerer. The namespace prefixes all metric names.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWith creates a Metrics instance registered with reg. Tests pass
// their own registry to avoid duplicate-registration panics.
func NewMetricsWith(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SearchesStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_started_total",
			Help:      "Total number of provider searches started",
		}, []string{"family", "source"}),
		SearchesCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_completed_total",
			Help:      "Total number of provider searches completed successfully",
		}, []string{"family", "source"}),
		SearchesFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_failed_total",
			Help:      "Total number of provider searches that failed",
		}, []string{"family", "source"}),
		SearchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of provider searches in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"family", "source"}),
		ResultsPerSearch: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "results_per_search",
			Help:      "Number of items returned per provider search",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}, []string{"family", "source"}),
		DuplicatesRemoved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_removed_total",
			Help:      "Total number of near-duplicate records removed",
		}),
		CuratedFallbackServed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "curated_fallback_served_total",
			Help:      "Federation runs answered only by curated fallback content",
		}),
		CacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of aggregation cache hits",
		}, []string{"family"}),
		CacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of aggregation cache misses",
		}, []string{"family"}),
		AggregationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregations_total",
			Help:      "Total number of facade operations",
		}, []string{"operation"}),
		AggregationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregation_duration_seconds",
			Help:      "End-to-end duration of facade operations in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		InternalFaults: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "internal_faults_total",
			Help:      "Panics recovered at the aggregation facade boundary",
		}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}
