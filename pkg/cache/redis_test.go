package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/biocompute/pkg/cache"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newRedis(t)
	runStoreContract(t, cache.NewRedisStoreFromClient(client))
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newRedis(t)
	store := cache.NewRedisStoreFromClient(client, cache.WithPrefix("team:"))

	require.NoError(t, store.Put(context.Background(), "k", &cache.Entry{JobID: "j"}))
	assert.True(t, mr.Exists("team:k"))
	assert.False(t, mr.Exists("lbc:cache:k"))
}

func TestRedisStore_TTL(t *testing.T) {
	mr, client := newRedis(t)
	store := cache.NewRedisStoreFromClient(client, cache.WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k", &cache.Entry{JobID: "j"}))
	_, err := store.Get(ctx, "k")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestRedisStore_Lock(t *testing.T) {
	_, client := newRedis(t)
	store := cache.NewRedisStoreFromClient(client)
	ctx := context.Background()

	unlock, err := store.Lock(ctx, "k", time.Minute)
	require.NoError(t, err)

	busy, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	_, err = store.Lock(busy, "k", time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(ctx))

	unlock2, err := store.Lock(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.NoError(t, unlock2(ctx))
}
