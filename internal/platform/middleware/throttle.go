package middleware

import (
	"net/http"

	"golang.org/x/time/rate"
)

// ThrottleOptions bounds the request rate on the public mint endpoint. The
// replica processes admissions sequentially, so the limiter is a single
// process-wide token bucket rather than a per-client table.
type ThrottleOptions struct {
	PerSecond float64
	Burst     int
}

// Throttle rejects requests beyond the configured rate with 429.
// A non-positive rate disables the middleware.
func Throttle(opts ThrottleOptions) func(http.Handler) http.Handler {
	if opts.PerSecond <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(opts.PerSecond), opts.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
