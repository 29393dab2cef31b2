package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hub47-site/internal/common/config"
)

type cachedEvent struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *RedisClient) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c := NewRedis(config.RedisConfig{Address: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	return mr, c
}

func TestRedisClient_JSONRoundTrip(t *testing.T) {
	mr, c := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	var miss []cachedEvent
	found, err := c.GetJSON(ctx, "events:list", &miss)
	require.NoError(t, err)
	assert.False(t, found)

	events := []cachedEvent{{ID: 7, Title: "Founders Breakfast"}}
	require.NoError(t, c.SetJSON(ctx, "events:list", events, time.Minute))
	assert.True(t, mr.Exists("events:list"))

	var got []cachedEvent
	found, err = c.GetJSON(ctx, "events:list", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, events, got)

	mr.FastForward(2 * time.Minute)
	found, err = c.GetJSON(ctx, "events:list", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisClient_CorruptValue(t *testing.T) {
	mr, c := setupRedis(t)
	require.NoError(t, mr.Set("events:list", "{not json"))

	var got []cachedEvent
	found, err := c.GetJSON(context.Background(), "events:list", &got)
	assert.False(t, found)
	assert.Error(t, err)
}

func TestRedisClient_Del(t *testing.T) {
	mr, c := setupRedis(t)
	require.NoError(t, mr.Set("a", "1"))
	require.NoError(t, c.Del(context.Background(), "a"))
	assert.False(t, mr.Exists("a"))
}

func TestRedisClient_Unreachable(t *testing.T) {
	c := NewFromClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond}))
	defer c.Close()

	assert.Error(t, c.Ping(context.Background()))
	_, err := c.GetJSON(context.Background(), "k", &struct{}{})
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	var s Store = Nop{}
	found, err := s.GetJSON(context.Background(), "k", &struct{}{})
	assert.False(t, found)
	assert.NoError(t, err)
	assert.NoError(t, s.SetJSON(context.Background(), "k", 1, time.Second))
	assert.NoError(t, s.Del(context.Background(), "k"))
}
