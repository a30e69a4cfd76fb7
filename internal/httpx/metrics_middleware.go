package httpx

import (
	"net/http"
	"time"

	"bookreviews/internal/metrics"
)

// MetricsMiddleware must wrap the ServeMux directly: the route label is read from
// r.Pattern, which the mux sets on the request it was handed.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := wrapWriter(w)

		next.ServeHTTP(rw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTP(r.Method, route, rw.statusCode, time.Since(start))
	})
}
