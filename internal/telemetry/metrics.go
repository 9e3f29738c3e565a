package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upstream call metrics, labelled by TourAPI operation and outcome.
var (
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tourapi_upstream_requests_total",
		Help: "TourAPI calls by operation and outcome.",
	}, []string{"operation", "outcome"})

	UpstreamRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tourapi_upstream_retries_total",
		Help: "Retry attempts against the TourAPI.",
	})
)

// Stats cache metrics, labelled by cache key.
var (
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stats_cache_hits_total",
		Help: "Stats cache hits by key.",
	}, []string{"key"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stats_cache_misses_total",
		Help: "Stats cache misses by key.",
	}, []string{"key"})
)

// Handler exposes the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
