package page

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/landing-api/internal/pricing"
)

// Cache keeps decoded product configurations in redis. A nil receiver or nil
// client disables caching, so callers never branch.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a config cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func configKey(pageID int64) string {
	return fmt.Sprintf("page:cfg:%d", pageID)
}

// GetConfig reports whether a cached config existed for the page.
func (c *Cache) GetConfig(ctx context.Context, pageID int64) (pricing.ProductConfig, bool) {
	var cfg pricing.ProductConfig
	if c == nil || c.client == nil || c.ttl <= 0 {
		return cfg, false
	}
	data, err := c.client.Get(ctx, configKey(pageID)).Bytes()
	if err != nil {
		return cfg, false
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, false
	}
	return cfg, true
}

// SetConfig stores the decoded config with the configured TTL.
func (c *Cache) SetConfig(ctx context.Context, pageID int64, cfg pricing.ProductConfig) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, configKey(pageID), data, c.ttl).Err()
}

// InvalidateConfig drops the cached config after an admin save.
func (c *Cache) InvalidateConfig(ctx context.Context, pageID int64) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, configKey(pageID)).Err()
}
