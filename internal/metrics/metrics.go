// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

// Package metrics exposes Prometheus instrumentation for recommendation
// generation, source fetches, the cache, feedback processing, the AI
// circuit breaker and the HTTP API. All collectors register with the
// default registry through promauto.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation Metrics
	RecommendationsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mind_digest_recommendations_generated_total",
			Help: "Total number of recommendation bundles generated",
		},
		[]string{"kind", "outcome"}, // kind: full, peers, tasks, adaptive; outcome: ok, fallback
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mind_digest_recommendation_duration_seconds",
			Help:    "End-to-end recommendation generation latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"kind"},
	)

	RecommendationItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mind_digest_recommendation_items",
			Help:    "Number of items returned per content bundle",
			Buckets: []float64{0, 1, 2, 4, 6, 8, 10, 15, 20},
		},
	)

	// Source Metrics
	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mind_digest_source_fetch_duration_seconds",
			Help:    "Duration of a single recommendation source fetch in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	SourceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mind_digest_source_failures_total",
			Help: "Total number of failed or timed-out source fetches",
		},
		[]string{"source", "reason"},
	)

	EnrichmentFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mind_digest_enrichment_failures_total",
			Help: "Total number of context enrichment steps that fell back to defaults",
		},
		[]string{"step"}, // mood, behavior, social
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mind_digest_cache_hits_total",
			Help: "Total number of recommendation cache hits",
		},
		[]string{"category"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mind_digest_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
		[]string{"category"},
	)

	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mind_digest_cache_evictions_total",
			Help: "Total number of stale cache entries evicted",
		},
	)

	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mind_digest_cache_entries",
			Help: "Current number of cached recommendation bundles",
		},
	)

	// Feedback Metrics
	FeedbackEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mind_digest_feedback_events_total",
			Help: "Total number of interaction events recorded",
		},
		[]string{"action"},
	)

	LearningRate = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mind_digest_learning_rate",
			Help:    "Learning rate computed for rated feedback",
			Buckets: []float64{0.01, 0.05, 0.1, 0.15, 0.2, 0.3, 0.4, 0.5},
		},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mind_digest_events_published_total",
			Help: "Total number of interaction events published to the event bus",
		},
		[]string{"status"}, // success, error
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mind_digest_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mind_digest_circuit_breaker_requests_total",
			Help: "Total number of requests through a circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mind_digest_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mind_digest_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mind_digest_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mind_digest_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Application Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mind_digest_app_info",
			Help: "Application build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordRecommendation records one generated bundle.
func RecordRecommendation(kind string, fallback bool, duration time.Duration) {
	outcome := "ok"
	if fallback {
		outcome = "fallback"
	}
	RecommendationsGenerated.WithLabelValues(kind, outcome).Inc()
	RecommendationDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordSourceFetch records a source fetch. reason is empty on success.
func RecordSourceFetch(source string, duration time.Duration, reason string) {
	SourceFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
	if reason != "" {
		SourceFailures.WithLabelValues(source, reason).Inc()
	}
}

// RecordCacheLookup records a cache hit or miss for a category.
func RecordCacheLookup(category string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(category).Inc()
		return
	}
	CacheMisses.WithLabelValues(category).Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// BreakerStateValue maps a breaker state name to the gauge encoding.
func BreakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}
