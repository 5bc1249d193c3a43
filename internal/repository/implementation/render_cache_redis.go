package implementation

import (
	"context"
	"errors"
	"time"

	"notebook-markdown-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const renderKeyPrefix = "notebook:markdown:"

type RedisRenderCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisRenderCache(rdb *redis.Client, ttl time.Duration) contract.RenderCache {
	return &RedisRenderCache{rdb: rdb, ttl: ttl}
}

func renderKey(notebookId uuid.UUID) string {
	return renderKeyPrefix + notebookId.String()
}

func (c *RedisRenderCache) Get(ctx context.Context, notebookId uuid.UUID) (string, bool, error) {
	md, err := c.rdb.Get(ctx, renderKey(notebookId)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return md, true, nil
}

func (c *RedisRenderCache) Set(ctx context.Context, notebookId uuid.UUID, markdown string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}
	return c.rdb.Set(ctx, renderKey(notebookId), markdown, ttl).Err()
}

func (c *RedisRenderCache) Delete(ctx context.Context, notebookId uuid.UUID) error {
	return c.rdb.Del(ctx, renderKey(notebookId)).Err()
}
