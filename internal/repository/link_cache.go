package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"shorturl-analytics/internal/model"
)

const cacheKeyPrefix = "shortlink:"

// LinkCache 缓存短码到重定向目标的映射。链接创建后不可变，缓存不会过时。
type LinkCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLinkCache 创建缓存，ttl 为单个条目的最长存活时间
func NewLinkCache(client *redis.Client, ttl time.Duration) *LinkCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &LinkCache{client: client, ttl: ttl}
}

// Get 返回缓存的目标，未命中时返回 (nil, nil)
func (c *LinkCache) Get(ctx context.Context, code string) (*model.LinkTarget, error) {
	data, err := c.client.Get(ctx, cacheKeyPrefix+code).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var target model.LinkTarget
	if err := json.Unmarshal(data, &target); err != nil {
		return nil, err
	}
	return &target, nil
}

// Set 写入缓存，存活时间不超过链接剩余有效期；已过期的链接不缓存
func (c *LinkCache) Set(ctx context.Context, target *model.LinkTarget) error {
	ttl := c.ttl
	if remaining := time.Until(target.ExpiresAt); remaining < ttl {
		ttl = remaining
	}
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(target)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKeyPrefix+target.Shortcode, data, ttl).Err()
}

// Ping 检查 Redis 连接
func (c *LinkCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
