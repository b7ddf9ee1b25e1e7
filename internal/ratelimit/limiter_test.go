package ratelimit_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/landing-api/internal/ratelimit"
)

func newLimiter(t *testing.T) ratelimit.Limiter {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return ratelimit.Limiter{Client: client, Prefix: "rl:test:"}
}

func TestMiddlewareAllowsWithinLimit(t *testing.T) {
	limiter := newLimiter(t)
	handler := limiter.Middleware(time.Minute, 3, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestMiddlewareBlocksOverLimit(t *testing.T) {
	limiter := newLimiter(t)
	handler := limiter.Middleware(time.Minute, 2, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		handler.ServeHTTP(last, req)
	}
	require.Equal(t, http.StatusTooManyRequests, last.Code)
	require.NotEmpty(t, last.Header().Get("Retry-After"))
}

func TestNilClientFailsOpen(t *testing.T) {
	limiter := ratelimit.Limiter{}
	handler := limiter.Middleware(time.Minute, 1, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/checkout", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}
