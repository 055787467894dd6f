package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter counts requests per key in fixed windows.
type Limiter interface {
	// Allow records one request for key and reports whether it fits in the
	// current window.
	Allow(ctx context.Context, key string) (Decision, error)
}

func decide(limit int, count int64, ttl time.Duration) Decision {
	d := Decision{Limit: limit, Allowed: count <= int64(limit)}
	if remaining := int64(limit) - count; remaining > 0 {
		d.Remaining = int(remaining)
	}
	if !d.Allowed {
		d.RetryAfter = ttl
	}
	return d
}
