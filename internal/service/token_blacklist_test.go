package service

import (
	"context"
	"testing"
	"time"

	cacheadapter "videoquiz/internal/adapter/cache"
	"videoquiz/internal/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisBlacklist(t *testing.T) (*CacheTokenBlacklist, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheTokenBlacklist(cacheadapter.NewRedisCacheAdapter(client)), mr
}

func TestCacheTokenBlacklist_RevokeAndExpire(t *testing.T) {
	ctx := context.Background()
	bl, mr := newMiniredisBlacklist(t)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	bl.now = func() time.Time { return now }

	revoked, err := bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, bl.Revoke(ctx, "jti-1", now.Add(10*time.Minute)))
	revoked, err = bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, 10*time.Minute, mr.TTL(cache.RevokedTokenKey("jti-1")))

	mr.FastForward(11 * time.Minute)
	revoked, err = bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "entry disappears once the token would have expired")
}

func TestCacheTokenBlacklist_SkipsExpiredTokens(t *testing.T) {
	ctx := context.Background()
	bl, mr := newMiniredisBlacklist(t)

	require.NoError(t, bl.Revoke(ctx, "old", time.Now().Add(-time.Second)))
	assert.False(t, mr.Exists(cache.RevokedTokenKey("old")))
}

func TestCacheTokenBlacklist_PropagatesBackendErrors(t *testing.T) {
	ctx := context.Background()
	bl, mr := newMiniredisBlacklist(t)
	mr.SetError("READONLY")

	_, err := bl.IsRevoked(ctx, "jti")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token blacklist")

	err = bl.Revoke(ctx, "jti", time.Now().Add(time.Hour))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "revoke")
}

func TestCacheTokenBlacklist_MemoryAdapter(t *testing.T) {
	ctx := context.Background()
	bl := NewCacheTokenBlacklist(cacheadapter.NewMemoryCacheAdapter())

	require.NoError(t, bl.Revoke(ctx, "jti", time.Now().Add(time.Hour)))
	revoked, err := bl.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.True(t, revoked)
}
