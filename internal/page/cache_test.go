package page_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/landing-api/internal/page"
	"github.com/noah-isme/landing-api/internal/pricing"
)

func newTestCache(t *testing.T) *page.Cache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return page.NewCache(client, time.Minute)
}

func TestCacheRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	_, ok := cache.GetConfig(ctx, 7)
	require.False(t, ok)

	cfg := pricing.ProductConfig{
		Variants: []pricing.Variant{{ID: "v1", Name: "Basic", Price: 100_000}},
	}
	cache.SetConfig(ctx, 7, cfg)

	got, ok := cache.GetConfig(ctx, 7)
	require.True(t, ok)
	require.Equal(t, cfg.Variants, got.Variants)
}

func TestCacheInvalidate(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	cache.SetConfig(ctx, 7, pricing.ProductConfig{})
	cache.InvalidateConfig(ctx, 7)

	_, ok := cache.GetConfig(ctx, 7)
	require.False(t, ok)
}

func TestNilCacheIsNoop(t *testing.T) {
	var cache *page.Cache
	ctx := context.Background()
	cache.SetConfig(ctx, 1, pricing.ProductConfig{})
	cache.InvalidateConfig(ctx, 1)
	_, ok := cache.GetConfig(ctx, 1)
	require.False(t, ok)
}
