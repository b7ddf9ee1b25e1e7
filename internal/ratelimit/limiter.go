// Package ratelimit implements a redis-backed sliding window limiter used on
// the public checkout endpoints.
package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/landing-api/internal/common"
)

// Limiter tracks events in a redis sorted set per key. A nil client disables
// limiting.
type Limiter struct {
	Client *redis.Client
	Prefix string
}

// Allow registers an event for the key and reports whether it is within the
// limit, alongside the remaining quota and the window reset time.
func (l Limiter) Allow(ctx context.Context, key string, window time.Duration, max int) (allowed bool, remaining int, reset time.Time, err error) {
	if l.Client == nil || max <= 0 || window <= 0 {
		return true, max, time.Now().Add(window), nil
	}

	now := time.Now()
	until := now.Add(window)
	cutoff := float64(now.Add(-window).UnixNano())
	redisKey := l.Prefix + key

	pipe := l.Client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", fmt.Sprintf("%f", cutoff))
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: key + ":" + uuid.NewString()})
	countCmd := pipe.ZCard(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window)
	if _, err = pipe.Exec(ctx); err != nil {
		return false, 0, until, err
	}

	current := int(countCmd.Val())
	remaining = max - current
	if remaining < 0 {
		remaining = 0
	}
	return current <= max, remaining, until, nil
}

// Middleware enforces a per-client-IP limit before delegating. Limiter errors
// fail open.
func (l Limiter) Middleware(window time.Duration, max int, onError func(error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := common.ClientIP(r)
			allowed, remaining, resetAt, err := l.Allow(r.Context(), key, window, max)
			if err != nil {
				if onError != nil {
					onError(err)
				}
				next.ServeHTTP(w, r)
				return
			}

			headers := w.Header()
			headers.Set("X-RateLimit-Limit", strconv.Itoa(max))
			headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			headers.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			if !allowed {
				retryAfter := int(time.Until(resetAt).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				headers.Set("Retry-After", strconv.Itoa(retryAfter))
				common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
