// Package cache stores rendered artifacts (scene SVGs and transition frames)
// so repeated renders of an unchanged project are served without redrawing.
//
// Backends implement [Cache]: [NullCache] disables caching, [FileCache] keeps
// entries on local disk for the CLI, and [RedisCache] shares them between
// preview server instances. Keys are built by a [Keyer] from a content hash
// of the project plus the render options, so any edit to the project or the
// options yields a new key.
package cache

import (
	"context"
	"time"
)

// Default TTLs for cached artifacts.
const (
	SceneTTL = 24 * time.Hour
	FrameTTL = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry TTL.
type Cache interface {
	// Get returns the value for key. A miss is reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A non-positive ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
