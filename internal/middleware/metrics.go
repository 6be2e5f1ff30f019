package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// HTTPObserver receives one observation per completed request.
type HTTPObserver interface {
	ObserveHTTP(method, path string, status int, d time.Duration)
}

// Metrics records request counts and latencies.
//
// The path label is chi's route pattern (e.g. "/debug"), not the raw URL, so
// random paths from scanners collapse into a single "unmatched" series.
func Metrics(obs HTTPObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrap(w)

			next.ServeHTTP(wrapped, r)

			path := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					path = p
				}
			}
			obs.ObserveHTTP(r.Method, path, wrapped.statusCode, time.Since(start))
		})
	}
}
