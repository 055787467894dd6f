package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/platform/ratelimit"
	"github.com/phrazzld/taskboard-api/internal/redact"
)

// LimitRecorder is notified of every rejected request.
type LimitRecorder interface {
	RecordRateLimited(r *http.Request)
}

// RateLimit returns middleware limiting requests per client IP under scope.
// Limiter failures let the request through. recorder may be nil.
func RateLimit(limiter ratelimit.Limiter, scope string, recorder LimitRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d, err := limiter.Allow(r.Context(), scope+":"+clientIP(r))
			if err != nil {
				logger.FromContextOrDefault(r.Context(), slog.Default()).
					Error("rate limit check failed", "error", redact.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if !d.Allowed {
				if recorder != nil {
					recorder.RecordRateLimited(r)
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(d.RetryAfter.Seconds()))))
				shared.RespondWithError(w, r, http.StatusTooManyRequests,
					"Too many requests. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr. chi's RealIP middleware has
// already substituted forwarded addresses when it is installed.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
