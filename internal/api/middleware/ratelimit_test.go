package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/taskboard-api/internal/platform/ratelimit"
)

type countingRecorder struct {
	mu    sync.Mutex
	count int
}

func (c *countingRecorder) RecordRateLimited(*http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("redis unavailable")
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimit_BlocksAfterLimit(t *testing.T) {
	rec := &countingRecorder{}
	handler := RateLimit(ratelimit.NewMemoryLimiter(2, time.Minute), "auth", rec)(okHandler)

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1111").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1:2222").Code)

	blocked := send("10.0.0.1:3333")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "60", blocked.Header().Get("Retry-After"))
	assert.Equal(t, "0", blocked.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "Too many requests. Please try again later.", decodeEnvelope(t, blocked).Message)
	assert.Equal(t, 1, rec.count)

	assert.Equal(t, http.StatusOK, send("10.0.0.2:1111").Code, "other clients are unaffected")
}

func TestRateLimit_FailsOpen(t *testing.T) {
	handler := RateLimit(failingLimiter{}, "auth", nil)(okHandler)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
