package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shorturl-analytics/internal/model"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestLinkCache_SetAndGet(t *testing.T) {
	mr, client := setupTestRedis(t)
	cache := NewLinkCache(client, time.Hour)
	ctx := context.Background()

	target := &model.LinkTarget{
		Shortcode:   "abc123",
		OriginalURL: "https://example.com",
		ExpiresAt:   time.Now().Add(30 * time.Minute).UTC(),
	}
	require.NoError(t, cache.Set(ctx, target))

	got, err := cache.Get(ctx, "abc123")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, target.OriginalURL, got.OriginalURL)
	assert.True(t, target.ExpiresAt.Equal(got.ExpiresAt))

	// 存活时间被截断到链接剩余有效期
	ttl := mr.TTL("shortlink:abc123")
	assert.True(t, ttl > 0 && ttl <= 30*time.Minute, "ttl=%v", ttl)
}

func TestLinkCache_Miss(t *testing.T) {
	_, client := setupTestRedis(t)
	cache := NewLinkCache(client, time.Hour)

	got, err := cache.Get(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestLinkCache_ExpiredTargetNotCached(t *testing.T) {
	mr, client := setupTestRedis(t)
	cache := NewLinkCache(client, time.Hour)

	target := &model.LinkTarget{Shortcode: "old123", OriginalURL: "https://example.com", ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, cache.Set(context.Background(), target))

	assert.False(t, mr.Exists("shortlink:old123"))
}

func TestLinkCache_TTLCappedByConfig(t *testing.T) {
	mr, client := setupTestRedis(t)
	cache := NewLinkCache(client, time.Minute)

	target := &model.LinkTarget{Shortcode: "long12", OriginalURL: "https://example.com", ExpiresAt: time.Now().Add(48 * time.Hour)}
	require.NoError(t, cache.Set(context.Background(), target))

	assert.Equal(t, time.Minute, mr.TTL("shortlink:long12"))
}

func TestLinkCache_InvalidJSON(t *testing.T) {
	mr, client := setupTestRedis(t)
	cache := NewLinkCache(client, time.Hour)
	require.NoError(t, mr.Set("shortlink:broken", "not-json"))

	got, err := cache.Get(context.Background(), "broken")
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestLinkCache_ServerDown(t *testing.T) {
	mr, client := setupTestRedis(t)
	cache := NewLinkCache(client, time.Hour)
	mr.Close()

	_, err := cache.Get(context.Background(), "abc123")
	assert.Error(t, err)
	assert.Error(t, cache.Ping(context.Background()))
}
