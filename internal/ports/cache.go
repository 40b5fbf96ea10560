package ports

import "time"

// Contract for an in-process keyed result cache with per-entry expiry.
// Absence and expiry are both reported as a miss; no operation fails.
// Key namespacing (e.g. "route_", "autocomplete_") is the caller's job.
type Cache interface {
	// Return the value stored under key, or false on a miss.
	Get(key string) (any, bool)
	// Store value under key for ttl. A non-positive ttl selects the cache default.
	Set(key string, value any, ttl time.Duration)
	// Remove key regardless of the TTL it was written with.
	Delete(key string)
	// Remove every entry.
	Clear()
}
