package cache

import (
	"context"
	"time"
)

// Cache stores byte payloads under string keys with per-entry TTLs. The API
// layer uses it to re-serve transcript and insights responses, which are
// immutable once a pipeline run settles, so short TTLs are always safe.
type Cache interface {
	// Get returns the payload for key, or false when absent or expired
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores the payload under key for ttl; ttl <= 0 applies a default
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete drops the key; absent keys are a no-op
	Delete(ctx context.Context, key string) error

	// Clear drops every entry
	Clear(ctx context.Context) error

	// Has reports whether key holds an unexpired entry
	Has(ctx context.Context, key string) bool
}

// Stats is a point-in-time snapshot of cache effectiveness
type Stats struct {
	Hits      int64
	Misses    int64
	Sets      int64
	Deletes   int64
	Evictions int64
	Size      int64 // bytes currently held
	MaxSize   int64 // byte budget; 0 means unbounded
}
