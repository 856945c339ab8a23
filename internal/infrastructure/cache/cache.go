// Package cache provides the key-value cache used for read-heavy listings.
// Values are opaque bytes; GetJSON and SetJSON cover the common case.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Backend names reported by Cache.Backend
const (
	BackendRedis    = "redis"
	BackendInMemory = "memory"
)

// CustomerListKey holds the serialized customer listing
const CustomerListKey = "webstack:customers:all"

// Cache is a key-value store with per-entry expiry
type Cache interface {
	// Get returns the value and whether it was found
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a value. A zero ttl uses the cache default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Backend() string
	Close() error
}

// Observer is notified of lookups, typically to feed metrics
type Observer interface {
	CacheLookup(backend string, hit bool)
}

// GetJSON reads key and decodes it into dest
func GetJSON(ctx context.Context, c Cache, key string, dest any) (bool, error) {
	data, found, err := c.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to decode cached value %q: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes value and stores it under key
func SetJSON(ctx context.Context, c Cache, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for %q: %w", key, err)
	}
	return c.Set(ctx, key, data, ttl)
}
