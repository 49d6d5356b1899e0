// Package metrics defines the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClaimTransitions counts claim lifecycle transitions by kind.
	ClaimTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "najdeno_claim_transitions_total",
		Help: "Claim lifecycle transitions by kind (created, approved, denied, picked_up, deleted)",
	}, []string{"transition"})

	// PolicyDenials counts authorization denials by operation.
	PolicyDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "najdeno_policy_denials_total",
		Help: "Operations refused by the access policy",
	}, []string{"operation"})

	// HTTPRequests counts HTTP requests by route pattern and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "najdeno_http_requests_total",
		Help: "HTTP requests by route and status",
	}, []string{"route", "status"})

	// HTTPDuration records HTTP request latency by route pattern.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "najdeno_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// CacheRequests counts public listing cache lookups by result (hit, miss, error).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "najdeno_cache_requests_total",
		Help: "Public item cache lookups by result",
	}, []string{"result"})

	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "najdeno_redis_errors_total",
		Help: "Failed Redis commands by command",
	}, []string{"command"})
)

// Claim transition label values.
const (
	TransitionCreated  = "created"
	TransitionApproved = "approved"
	TransitionDenied   = "denied"
	TransitionPickedUp = "picked_up"
	TransitionDeleted  = "deleted"
)
