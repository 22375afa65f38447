package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/messagely/apiserver/internal/metrics"
)

// unmatchedRoute labels requests that no route handled, so arbitrary paths
// never become label values.
const unmatchedRoute = "unmatched"

// Prometheus records request count and latency labelled by the chi route
// pattern. Scrapes of /metrics are not counted.
func Prometheus(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r)
		if r.URL.Path == "/metrics" {
			return
		}
		metrics.RecordRequest(r.Method, routePattern(r), rec.status, time.Since(start).Seconds())
	})
}

// routePattern must run after the router has served r; chi fills in the
// patterns while routing.
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
