package middleware

import (
	"net/http"
	"time"
)

type httpObserver interface {
	ObserveHTTP(method string, route string, status int, duration time.Duration)
}

// Labels for requests no pattern matched
const (
	unmatchedRoute  = "unmatched"
	unmatchedMethod = "other"
)

// Metrics observes every request by the matched ServeMux pattern
// Must wrap the mux itself, the mux sets the pattern on the request
func Metrics(o httpObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := newRecordingWriter(w)
			next.ServeHTTP(rw, r)

			method, route := r.Method, r.Pattern
			if route == "" {
				// Method is client controlled, keep label set bounded
				method, route = unmatchedMethod, unmatchedRoute
			}
			o.ObserveHTTP(method, route, rw.data.status, time.Since(start))
		})
	}
}
