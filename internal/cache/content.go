package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keys for publicly served content. Writes from the admin endpoints
// invalidate these so visitors never see stale listings for long.
const (
	KeyServices = "content:services"
	KeyBlogList = "content:blog:published"
	KeyFeedback = "content:feedback:approved"
)

var ErrCacheMiss = errors.New("cache miss")

// ContentCache is a small JSON read-through layer over redis for the public
// site pages. Every method is best-effort: a down redis degrades to direct
// database reads, never to request failures.
type ContentCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewContentCache(client *redis.Client, ttl time.Duration) *ContentCache {
	return &ContentCache{client: client, ttl: ttl}
}

func (c *ContentCache) Get(ctx context.Context, key string, out any) error {
	if c == nil || c.client == nil {
		return ErrCacheMiss
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return ErrCacheMiss
	}
	return nil
}

func (c *ContentCache) Set(ctx context.Context, key string, value any) {
	if c == nil || c.client == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.client.Set(ctx, key, payload, c.ttl)
}

func (c *ContentCache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}
	c.client.Del(ctx, keys...)
}
