package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sibarkumen/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemoryStore(t *testing.T) (*InMemoryIdempotencyStore, *time.Time) {
	t.Helper()
	store := NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	return store, &now
}

func TestInMemoryIdempotencyStore_Claim(t *testing.T) {
	ctx := context.Background()

	t.Run("first claim wins", func(t *testing.T) {
		store, _ := newTestMemoryStore(t)

		ok, err := store.Claim(ctx, "k1", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Claim(ctx, "k1", time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("expired claim can be taken again", func(t *testing.T) {
		store, now := newTestMemoryStore(t)

		ok, err := store.Claim(ctx, "k2", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		*now = now.Add(time.Minute)
		ok, err = store.Claim(ctx, "k2", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("completed key is not claimable", func(t *testing.T) {
		store, _ := newTestMemoryStore(t)

		require.NoError(t, store.Complete(ctx, "k3", shared.IdempotentResponse{Status: 201}, time.Hour))
		ok, err := store.Claim(ctx, "k3", time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("released key is claimable", func(t *testing.T) {
		store, _ := newTestMemoryStore(t)

		_, _ = store.Claim(ctx, "k4", time.Hour)
		require.NoError(t, store.Release(ctx, "k4"))
		ok, err := store.Claim(ctx, "k4", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestInMemoryIdempotencyStore_Load(t *testing.T) {
	ctx := context.Background()
	store, now := newTestMemoryStore(t)

	resp, err := store.Load(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, resp)

	_, _ = store.Claim(ctx, "k", time.Hour)
	resp, err = store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, resp, "pending key has no response")

	body := []byte(`{"success":true}`)
	require.NoError(t, store.Complete(ctx, "k", shared.IdempotentResponse{
		Status:      201,
		ContentType: "application/json",
		Body:        body,
	}, time.Hour))
	body[0] = 'X'

	resp, err = store.Load(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 201, resp.Status)
	assert.Equal(t, `{"success":true}`, string(resp.Body), "stored body is a copy")

	*now = now.Add(2 * time.Hour)
	resp, err = store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	ctx := context.Background()
	store, now := newTestMemoryStore(t)

	_, _ = store.Claim(ctx, "short", time.Minute)
	_, _ = store.Claim(ctx, "long", time.Hour)
	assert.Equal(t, 2, store.Size())

	*now = now.Add(10 * time.Minute)
	store.cleanup()
	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_ConcurrentClaim(t *testing.T) {
	store, _ := newTestMemoryStore(t)
	ctx := context.Background()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := store.Claim(ctx, "same", time.Hour); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
