package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/kevinaaaquil/bookreview/logging"
	"github.com/kevinaaaquil/bookreview/response"
)

// RateLimit limits each client IP to requests per window. A non-positive
// limit disables it.
func RateLimit(requests int, window time.Duration) func(next http.Handler) http.Handler {
	if requests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			logging.Warn().Str("path", r.URL.Path).Str("remote", r.RemoteAddr).Msg("rate limit exceeded")
			response.Message(w, http.StatusTooManyRequests, "Too many requests, please try again later")
		}),
	)
}
