// Package cache provides the storage layer for fetched records, computed
// layouts and rendered artifacts.
//
// # Backends
//
//   - [FileCache]: entries as JSON files under a directory (CLI default)
//   - [RedisCache]: shared cache for multiple server replicas
//   - [MemoryCache]: in-process map, used by the server when no Redis is configured
//   - [NullCache]: stores nothing (--no-cache)
//
// # Keys
//
// Keys are produced by a [Keyer] so every backend shares one naming scheme.
// [ScopedKeyer] prefixes all keys, which keeps separate atlases (for example
// a staging sheet and the production sheet) apart in one Redis database.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get returns the value for key and whether it was found.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs per entry kind.
const (
	// RecordsTTL matches the stale time of the record source.
	RecordsTTL = 2 * time.Minute

	// LayoutTTL applies to computed layouts. Layout keys are content
	// addressed, so a long TTL is safe.
	LayoutTTL = 24 * time.Hour

	// ArtifactTTL applies to rendered outputs.
	ArtifactTTL = 24 * time.Hour

	// ProfileTTL applies to profile URL validation outcomes.
	ProfileTTL = 10 * time.Minute
)
