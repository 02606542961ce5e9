// Package cache provides the response cache used by the upstream API clients.
//
// # Overview
//
// A [Cache] maps a request fingerprint to the bytes of a previously computed
// result. Entries carry a time-to-live set at write time; an entry older than
// its TTL is never served and is treated exactly like a missing key, so the
// caller recomputes it and overwrites the stale value.
//
// Implementations:
//
//   - [MemoryCache]: in-process map, the default. Expired entries are dropped
//     lazily on read; an optional capacity bound and periodic sweep keep
//     long-running processes from growing without limit.
//   - [RedisCache]: shared cache for several plantgate instances.
//   - [NullCache]: never stores anything (--no-cache).
//
// # Keys
//
// Keys are built by a [Keyer] from the logical request parameters, so two
// identical logical requests always map to the same key:
//
//	k := cache.NewDefaultKeyer()
//	k.SearchKey("perenual:", "Tomato", 8)  // "search:perenual::tomato:8"
//	k.SpeciesKey("perenual:", 1234)        // "species:perenual::1234"
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long upstream responses stay fresh.
const DefaultTTL = time.Hour

// Cache stores opaque byte values under string keys.
//
// Get reports (nil, false, nil) for a missing or expired key. Set always
// overwrites any existing entry for the key (last writer wins). A ttl of
// zero stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
