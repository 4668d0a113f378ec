// Package metrics exposes the Prometheus registry shared by the pokedex
// packages. All metrics are defined in their respective packages (client,
// cache, pagestate, pagination) to maintain modularity and avoid circular
// dependencies.
//
// This package provides the scrape handler and the reference for all
// available metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the pokedex packages.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the matching gatherer served by Handler.
var Gatherer = prometheus.DefaultGatherer

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - pokeapi_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - pokeapi_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - pokeapi_errors_total{class} (Counter): Errors by class (client, server, network, decode)
//
// Cache Metrics (pkg/cache):
//   - pokedex_cache_hits_total{layer} (Counter): Page cache hits by layer (memory, redis)
//   - pokedex_cache_misses_total{layer} (Counter): Page cache misses by layer
//   - pokedex_cache_entries{layer} (Gauge): Cached pages by layer
//   - pokedex_cache_errors_total{operation} (Counter): Cache backend errors
//
// Page State Metrics (pkg/pagestate):
//   - pokedex_page_loads_total{result} (Counter): Page loads by result (cache, remote, error, superseded, out_of_range)
//
// Prefetch Metrics (pkg/pagination):
//   - pokedex_prefetch_pages_total{result} (Counter): Prefetched pages by result (fetched, skipped, failed)
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(pokedex_cache_hits_total[5m])) /
//   (sum(rate(pokedex_cache_hits_total[5m])) + sum(rate(pokedex_cache_misses_total[5m])))
//
//   # Superseded Load Ratio
//   rate(pokedex_page_loads_total{result="superseded"}[5m]) / rate(pokedex_page_loads_total[5m])
//
//   # Request Error Rate
//   rate(pokeapi_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(pokeapi_request_duration_seconds_bucket[5m]))
