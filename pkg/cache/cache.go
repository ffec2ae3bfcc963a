// Package cache provides response cache backends for lttngpack.
//
// All distro data comes from remote services (the Repology API, the Buildroot
// and OpenEmbedded cgit instances), so responses are cached between runs. Three
// backends implement the Cache interface:
//   - FileCache: per-user cache directory, used by the CLI
//   - RedisCache: shared cache for server deployments
//   - NullCache: caching disabled (--no-cache, tests)
package cache

import (
	"context"
	"time"
)

// Cache stores raw response bytes under string keys with per-entry TTLs.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves the value for key. The second return value reports
	// whether the key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}
