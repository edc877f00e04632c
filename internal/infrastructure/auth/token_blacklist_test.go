package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sibarkumen/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisBlacklist(t *testing.T) (*RedisTokenBlacklist, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisTokenBlacklist(client), mr
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port := mr.Host(), mr.Port()

	client, err := NewRedisClient(context.Background(), config.RedisConfig{Host: host, Port: mustAtoi(t, port)})
	require.NoError(t, err)
	require.NoError(t, client.Close())

	mr.Close()
	_, err = NewRedisClient(context.Background(), config.RedisConfig{Host: host, Port: mustAtoi(t, port)})
	assert.Error(t, err)
}

func TestRedisTokenBlacklist_Revoke(t *testing.T) {
	ctx := context.Background()
	bl, mr := newRedisBlacklist(t)

	revoked, err := bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, bl.Revoke(ctx, "jti-1", time.Minute))
	revoked, err = bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.True(t, mr.Exists(blacklistPrefix+"jti:jti-1"))

	mr.FastForward(2 * time.Minute)
	revoked, err = bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisTokenBlacklist_RevokeExpiredTokenIsNoop(t *testing.T) {
	bl, mr := newRedisBlacklist(t)
	require.NoError(t, bl.Revoke(context.Background(), "jti-1", 0))
	assert.False(t, mr.Exists(blacklistPrefix+"jti:jti-1"))
}

func TestRedisTokenBlacklist_RevokeUser(t *testing.T) {
	ctx := context.Background()
	bl, _ := newRedisBlacklist(t)
	revokedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	bl.now = func() time.Time { return revokedAt }

	require.NoError(t, bl.RevokeUser(ctx, "user-1", time.Hour))

	tests := []struct {
		name     string
		issuedAt time.Time
		want     bool
	}{
		{"issued before", revokedAt.Add(-time.Minute), true},
		{"issued same second", revokedAt.Add(500 * time.Millisecond), true},
		{"issued after", revokedAt.Add(2 * time.Second), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bl.IsUserRevoked(ctx, "user-1", tt.issuedAt)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := bl.IsUserRevoked(ctx, "user-2", revokedAt.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, got)
}

func TestRedisTokenBlacklist_CorruptTimestamp(t *testing.T) {
	bl, mr := newRedisBlacklist(t)
	require.NoError(t, mr.Set(blacklistPrefix+"user:user-1", "yesterday"))
	_, err := bl.IsUserRevoked(context.Background(), "user-1", time.Now())
	assert.Error(t, err)
}

func TestRedisTokenBlacklist_ConnectionError(t *testing.T) {
	bl, mr := newRedisBlacklist(t)
	mr.Close()

	_, err := bl.IsRevoked(context.Background(), "jti-1")
	assert.Error(t, err)
	assert.Error(t, bl.Revoke(context.Background(), "jti-1", time.Minute))
}

func TestMemoryTokenBlacklist(t *testing.T) {
	ctx := context.Background()
	bl := NewMemoryTokenBlacklist()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	bl.now = func() time.Time { return now }

	require.NoError(t, bl.Revoke(ctx, "jti-1", time.Minute))
	revoked, err := bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, bl.RevokeUser(ctx, "user-1", time.Hour))
	revoked, err = bl.IsUserRevoked(ctx, "user-1", now.Add(-time.Minute))
	require.NoError(t, err)
	assert.True(t, revoked)
	revoked, err = bl.IsUserRevoked(ctx, "user-1", now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(2 * time.Hour)
	revoked, err = bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
	revoked, err = bl.IsUserRevoked(ctx, "user-1", now.Add(-3*time.Hour))
	require.NoError(t, err)
	assert.False(t, revoked)
}
