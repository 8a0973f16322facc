// StudyBites - Preference-Aware Restaurant Discovery
// Copyright 2026 StudyBites contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studybites/studybites

// Package metrics defines the Prometheus instrumentation for StudyBites:
// API endpoint latency and throughput, validation cache efficiency,
// classifier throughput, and outbound provider health.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Validation Cache Metrics
	ValidationCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "validation_cache_hits_total",
			Help: "Total number of validation cache hits",
		},
	)

	ValidationCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "validation_cache_misses_total",
			Help: "Total number of validation cache misses",
		},
	)

	ValidationCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "validation_cache_entries",
			Help: "Current number of validation cache entries",
		},
	)

	ValidationCacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "validation_cache_evictions_total",
			Help: "Total number of validation cache evictions",
		},
	)

	// Image Classifier Metrics
	ClassifierRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifier_requests_total",
			Help: "Total number of image classification outcomes",
		},
		[]string{"result"}, // "valid", "invalid", "error", "skipped"
	)

	ClassifierRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "classifier_request_duration_seconds",
			Help:    "Duration of image classification calls in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// Search Provider Metrics
	SearchProviderErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_provider_errors_total",
			Help: "Total number of failed candidate fetches from the search provider",
		},
	)

	// Detail Cache Metrics
	DetailCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "detail_cache_hits_total",
			Help: "Total number of restaurant detail cache hits",
		},
	)

	DetailCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "detail_cache_misses_total",
			Help: "Total number of restaurant detail cache misses",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breakers",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// RecordAPIRequest records a completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the active request gauge.
func TrackActiveRequest(active bool) {
	if active {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
