package cache

import (
	"context"
	"time"
)

// NullCache disables caching: every conversion recomputes. It serves
// --no-cache runs and tests that must exercise the transform itself.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get always misses, so the conversion always runs.
func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards the converted document.
func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete has nothing to remove.
func (c *NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close has nothing to release.
func (c *NullCache) Close() error {
	return nil
}

var _ Cache = (*NullCache)(nil)
