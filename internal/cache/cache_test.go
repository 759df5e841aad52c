package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pennywise/internal/cache"
)

func TestKey(t *testing.T) {
	id := uuid.MustParse("6f1c2b0e-8d8a-4b8e-9d5a-1f2e3d4c5b6a")
	assert.Equal(t, "pennywise:wallet_balance:6f1c2b0e-8d8a-4b8e-9d5a-1f2e3d4c5b6a", cache.Key(cache.EntityWalletBalance, id))
}

func TestNoop(t *testing.T) {
	var c cache.Cache = cache.Noop{}

	require.NoError(t, c.Set(context.Background(), "k", 1))

	var got int
	hit, err := c.Get(context.Background(), "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.Delete(context.Background(), "k"))
}

func TestRedis_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := cache.NewRedis(client, time.Minute)
	defer c.Close()

	var got int
	hit, err := c.Get(context.Background(), "k", &got)
	assert.Error(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.Delete(context.Background()))
}
