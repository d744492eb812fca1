package cache

import (
	"context"
	"time"
)

// Cache defines the interface for caching services.
// Get returns an empty string and a nil error when the key does not exist.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Noop is a Cache that stores nothing. It is used when no cache backend is configured.
type Noop struct{}

func (Noop) Get(context.Context, string) (string, error)                   { return "", nil }
func (Noop) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (Noop) Delete(context.Context, ...string) error                       { return nil }
