package kv

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func TestRedisStore_GetMissingKey(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewRedisStore(client)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedisStore_SetGetRemove(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewRedisStore(client)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "cart:dev1", `{"lines":[]}`))

	val, err := store.Get(ctx, "cart:dev1")
	require.NoError(t, err)
	assert.Equal(t, `{"lines":[]}`, val)

	require.NoError(t, store.Remove(ctx, "cart:dev1"))
	_, err = store.Get(ctx, "cart:dev1")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedisStore_RemoveMissingKeyIsNoop(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewRedisStore(client)

	assert.NoError(t, store.Remove(context.Background(), "never-set"))
}

func TestSessionStore_AppliesTTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewSessionStore(client, 5*time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "buy-now:dev1", `{}`))
	assert.Equal(t, 5*time.Minute, mr.TTL("buy-now:dev1"))

	// expired values read as missing
	mr.FastForward(6 * time.Minute)
	_, err := store.Get(ctx, "buy-now:dev1")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestSessionStore_DefaultTTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewSessionStore(client, 0)

	require.NoError(t, store.Set(context.Background(), "k", "v"))
	assert.Equal(t, DefaultSessionTTL, mr.TTL("k"))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "device-id", "device_abc"))
	val, err := store.Get(ctx, "device-id")
	require.NoError(t, err)
	assert.Equal(t, "device_abc", val)

	require.NoError(t, store.Remove(ctx, "device-id"))
	_, err = store.Get(ctx, "device-id")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}
