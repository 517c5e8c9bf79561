// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

// Package metrics provides Prometheus instrumentation for the enrichment
// pipeline: provider request latency and outcomes, relay circuit breaker
// state, cache efficiency, and HTTP endpoint throughput.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Provider Metrics

	// ProviderRequestDuration tracks outbound provider call latency.
	// Provider label values: gemini, steam_store, ggdeals, rawg, steam_web.
	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Duration of external provider requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "operation"},
	)

	// ProviderRequests counts provider calls by outcome
	// (success, not_found, transport_error, parse_error, degraded).
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Total number of external provider requests by outcome",
		},
		[]string{"provider", "operation", "outcome"},
	)

	// Enrichment Pipeline Metrics

	// EnrichmentCandidates counts candidates by fate (enriched, dropped).
	EnrichmentCandidates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_candidates_total",
			Help: "Total number of AI candidates by enrichment fate",
		},
		[]string{"fate"},
	)

	// EnrichmentDuration tracks the full pipeline run duration.
	EnrichmentDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "enrichment_run_duration_seconds",
			Help:    "Duration of a full recommendation pipeline run in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
	)

	// Recommendation Cache Metrics

	RecommendCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_hits_total",
			Help: "Total number of recommendation cache hits",
		},
	)

	RecommendCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
	)

	RecommendCacheErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_errors_total",
			Help: "Total number of recommendation cache backend failures (degraded to miss/no-op)",
		},
	)

	// Reference-data memo cache.
	ReferenceCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reference_cache_hits_total",
			Help: "Total number of reference-data memo cache hits",
		},
	)

	ReferenceCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reference_cache_misses_total",
			Help: "Total number of reference-data memo cache misses",
		},
	)

	// Circuit Breaker Metrics

	// CircuitBreakerState tracks breaker state per relay strategy
	// (0 = closed, 1 = half-open, 2 = open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "relay_circuit_breaker_state",
			Help: "Circuit breaker state per relay strategy (0=closed, 1=half-open, 2=open)",
		},
		[]string{"strategy"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"strategy", "from", "to"},
	)

	// HTTP Metrics

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	// MediaProxyBytes counts bytes streamed through the media proxies.
	MediaProxyBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_proxy_bytes_total",
			Help: "Total bytes streamed through the media proxy endpoints",
		},
		[]string{"kind"}, // "image" or "video"
	)
)

// ObserveProviderRequest records one provider call observation.
func ObserveProviderRequest(provider, operation, outcome string, start time.Time) {
	ProviderRequestDuration.WithLabelValues(provider, operation).Observe(time.Since(start).Seconds())
	ProviderRequests.WithLabelValues(provider, operation, outcome).Inc()
}

// ObserveHTTPRequest records one HTTP request observation.
func ObserveHTTPRequest(method, path string, status int, start time.Time) {
	HTTPRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}
