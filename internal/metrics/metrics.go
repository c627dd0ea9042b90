// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	// BackendRequestDuration records hosted backend latency by operation and status.
	BackendRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skout_backend_request_duration_seconds",
		Help:    "Hosted backend request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "status"})

	// BackendRequestsTotal counts hosted backend requests by operation and outcome.
	BackendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skout_backend_requests_total",
		Help: "Total number of hosted backend requests",
	}, []string{"operation", "outcome"})

	// HTTPRequestDuration records request latency by route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skout_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// ActiveSessions is the number of sessions in the session store.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "skout_active_sessions",
		Help: "Number of server-side auth sessions",
	})

	// RedisErrorsTotal counts Redis errors by command.
	RedisErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skout_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// AuthEventsTotal counts published auth state changes by type.
	AuthEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skout_auth_events_total",
		Help: "Total auth state change events published",
	}, []string{"type"})

	// AuthEventDrops counts events not delivered to a slow subscriber.
	AuthEventDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skout_auth_event_drops_total",
		Help: "Total auth events dropped because a subscriber was not reading",
	})

	// EditorSavesTotal counts config saves by editor kind and outcome.
	EditorSavesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skout_editor_saves_total",
		Help: "Total monitor configuration saves",
	}, []string{"editor", "outcome"})

	// MaintenanceRunsTotal counts scheduled maintenance jobs by job and outcome.
	MaintenanceRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skout_maintenance_runs_total",
		Help: "Total scheduled maintenance runs",
	}, []string{"job", "outcome"})

	// RateLimitedTotal counts rejected requests by rate category.
	RateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skout_rate_limited_total",
		Help: "Total requests rejected by the rate limiter",
	}, []string{"category"})
)

// ObserveBackendCall records one hosted backend request. status is 0 when no
// response was received.
func ObserveBackendCall(operation string, status int, duration time.Duration, err error) {
	BackendRequestDuration.WithLabelValues(operation, strconv.Itoa(status)).Observe(duration.Seconds())
	BackendRequestsTotal.WithLabelValues(operation, Outcome(err)).Inc()
}

// ObserveHTTPRequest records one handled HTTP request.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// Outcome maps an error to the outcome label.
func Outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}
