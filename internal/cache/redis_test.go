package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/venue-console/internal/config"
)

func setupTestCache(t *testing.T) (*Redis, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
	}

	cache, err := InitServer(context.Background(), cfg, "console:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestRedis(t *testing.T) {
	cache, _ := setupTestCache(t)
	runStorageSuite(t, cache)
}

func TestRedis_KeysArePrefixed(t *testing.T) {
	cache, mr := setupTestCache(t)

	require.NoError(t, cache.Set(context.Background(), "token", "abc"))

	val, err := mr.Get("console:token")
	require.NoError(t, err)
	assert.Equal(t, `"abc"`, val)
	assert.Equal(t, 0, int(mr.TTL("console:token")))
}

func TestRedis_InvalidJSON(t *testing.T) {
	cache, mr := setupTestCache(t)
	require.NoError(t, mr.Set("console:bad", "not-json"))

	var out testStruct
	found, err := cache.Get(context.Background(), "bad", &out)
	assert.False(t, found)
	assert.Error(t, err)
}

func TestInitServerInvalidAddr(t *testing.T) {
	cfg := config.RedisConnection{
		AddressRedis: "127.0.0.1:1",
	}

	cache, err := InitServer(context.Background(), cfg, "")
	assert.Nil(t, cache)
	assert.Error(t, err)
}
