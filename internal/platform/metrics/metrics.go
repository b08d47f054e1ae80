// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package metrics declares the Prometheus collectors exported on /metrics.
//
// Collectors are registered on the default registry at package init via
// promauto, so importing the package is enough to expose them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values shared by the counters below.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeReuse   = "reuse_detected"
	OutcomeError   = "error"
)

// # HTTP

var (
	// HTTPRequestsTotal counts served requests.
	// Labels: method, route (chi pattern), status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidora_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration measures handler latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidora_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	// RateLimitHits counts requests rejected by a limiter.
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidora_rate_limit_hits_total",
			Help: "Total number of requests rejected by rate limiting",
		},
		[]string{"limiter"},
	)
)

// # Auth

var (
	// TokenOperations counts Token Service calls.
	// Labels:
	//   - operation: "issue", "rotate", "revoke", "verify_access"
	//   - outcome: "success", "failure", "reuse_detected", "error"
	TokenOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidora_auth_token_operations_total",
			Help: "Total number of token service operations",
		},
		[]string{"operation", "outcome"},
	)

	// LoginAttempts counts credential checks.
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidora_auth_login_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"outcome"},
	)
)

// # Social

var (
	// EdgeToggles counts toggles by relation kind and resulting state ("on"/"off").
	EdgeToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidora_social_toggles_total",
			Help: "Total number of relation toggles",
		},
		[]string{"kind", "state"},
	)

	// CountCacheRequests counts derived-count cache lookups.
	// Labels: result ("hit", "miss", "error").
	CountCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidora_count_cache_requests_total",
			Help: "Total number of derived-count cache lookups",
		},
		[]string{"result"},
	)

	// CircuitBreakerState reports breaker state (0=closed, 1=half-open, 2=open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vidora_circuit_breaker_state",
			Help: "Current circuit breaker state",
		},
		[]string{"name"},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
