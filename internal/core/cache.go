package core

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"storefront-backend-go/pkg/cache"
)

// Cache keys.
const (
	cacheKeyPublicCategories = "categories:public"
	cacheKeyProductURLPrefix = "product:url:"
)

// jsonCache stores values as JSON. Backend failures degrade to cache misses.
type jsonCache struct {
	backend cache.Cache
	ttl     time.Duration
	logger  *zap.Logger
}

func newJSONCache(backend cache.Cache, ttl time.Duration, logger *zap.Logger) *jsonCache {
	if backend == nil {
		backend = cache.Noop{}
	}
	return &jsonCache{backend: backend, ttl: ttl, logger: logger}
}

// get decodes key into dst and reports whether it was a hit.
func (c *jsonCache) get(ctx context.Context, key string, dst interface{}) bool {
	raw, err := c.backend.Get(ctx, key)
	if err != nil || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		c.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		_ = c.backend.Delete(ctx, key)
		return false
	}
	return true
}

func (c *jsonCache) set(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.backend.Set(ctx, key, string(raw), c.ttl)
}

func (c *jsonCache) invalidate(ctx context.Context, keys ...string) {
	if err := c.backend.Delete(ctx, keys...); err != nil {
		c.logger.Warn("failed to invalidate cache", zap.Strings("keys", keys), zap.Error(err))
	}
}
