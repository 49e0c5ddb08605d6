package domain

import (
	"context"
	"time"
)

// CacheError is a sentinel error type for cache adapters.
type CacheError string

func (e CacheError) Error() string { return string(e) }

// ErrCacheMiss reports an absent or expired key.
const ErrCacheMiss = CacheError("cache: key not found")

// Cache is the key/value port shared by the transcript cache and the
// token blacklist. Redis and an in-process map implement it.
type Cache interface {
	// Get returns ErrCacheMiss when key is absent.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key. A zero ttl never expires.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// Delete is a no-op for unknown keys.
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
