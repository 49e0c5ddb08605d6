package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"videoquiz/internal/cache"
	"videoquiz/internal/domain"
)

// CacheTokenBlacklist keeps revoked token IDs in the cache until the token
// itself expires (jwt.blacklist_store: cache).
type CacheTokenBlacklist struct {
	cache domain.Cache
	now   func() time.Time
}

func NewCacheTokenBlacklist(c domain.Cache) *CacheTokenBlacklist {
	return &CacheTokenBlacklist{cache: c, now: time.Now}
}

// Revoke stores jti with a TTL ending at expiresAt. Already expired tokens
// need no entry.
func (b *CacheTokenBlacklist) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(b.now())
	if ttl <= 0 {
		return nil
	}
	if err := b.cache.Set(ctx, cache.RevokedTokenKey(jti), "1", ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (b *CacheTokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, err := b.cache.Get(ctx, cache.RevokedTokenKey(jti))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrCacheMiss) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check token blacklist: %w", err)
}

var _ domain.TokenBlacklist = (*CacheTokenBlacklist)(nil)
