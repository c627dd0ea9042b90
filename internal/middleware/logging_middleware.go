package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/skout-hq/skout/internal/metrics"
	"github.com/skout-hq/skout/internal/utils"
)

// unmatchedRoute labels requests that matched no route.
const unmatchedRoute = "unmatched"

// RequestLogger logs every request and records its latency by route pattern.
// logRequests turns the log line off while keeping the metric.
func RequestLogger(logRequests bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			latency := time.Since(start)

			metrics.ObserveHTTPRequest(r.Method, routePattern(r), status, latency)
			if logRequests {
				utils.LogHTTPRequest(
					chimw.GetReqID(r.Context()),
					r.Method,
					r.URL.Path,
					r.RemoteAddr,
					r.UserAgent(),
					status,
					latency,
				)
			}
		})
	}
}

// routePattern keeps the metric cardinality bounded: ids and keywords in the
// path are reported as their pattern.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return unmatchedRoute
}
