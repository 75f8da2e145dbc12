// Package cache provides content-addressed caching for conversion results.
//
// A PAGE XML conversion is deterministic: the same input bytes and the same
// option set always produce the same output bytes. That makes conversions
// ideal cache material, keyed by a hash of the input plus the options.
//
// Three backends are provided:
//   - FileCache: directory-backed, used by the CLI across invocations
//   - RedisCache: shared cache for the HTTP service
//   - NullCache: caching disabled, used in tests and one-shot runs
//
// All backends implement the Cache interface and are safe for concurrent
// use by multiple goroutines.
package cache

import (
	"context"
	"time"
)

// TTLDocument is how long converted documents stay cached. Conversions are
// deterministic, so the TTL only bounds disk/Redis growth.
const TTLDocument = 7 * 24 * time.Hour

// Cache stores conversion results keyed by content hash.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// DocumentKeyOpts are the option fields that shape a conversion's output
// and therefore participate in the cache key.
type DocumentKeyOpts struct {
	Namespace       string `json:"namespace"`
	TextPlaceholder string `json:"text_placeholder"`
	RegionPoints    string `json:"region_points"`
	LinePoints      string `json:"line_points"`
	BaselinePoints  string `json:"baseline_points"`
}

// DocumentKey builds the cache key for a conversion: the hash of the input
// bytes combined with every option that shapes the output.
func DocumentKey(inputHash string, opts DocumentKeyOpts) string {
	return hashKey("doc", inputHash, opts)
}
