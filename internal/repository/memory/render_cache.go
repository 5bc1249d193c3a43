package memory

import (
	"context"
	"time"

	"notebook-markdown-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type RenderCache struct {
	cache *cache.Cache
}

// NewRenderCache keeps entries for ttl unless Set overrides it, purging
// expired items every 10 minutes.
func NewRenderCache(ttl time.Duration) contract.RenderCache {
	return &RenderCache{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (r *RenderCache) Get(ctx context.Context, notebookId uuid.UUID) (string, bool, error) {
	if x, found := r.cache.Get(notebookId.String()); found {
		return x.(string), true, nil
	}
	return "", false, nil
}

// Set with a zero ttl uses the cache default.
func (r *RenderCache) Set(ctx context.Context, notebookId uuid.UUID, markdown string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.DefaultExpiration
	}
	r.cache.Set(notebookId.String(), markdown, ttl)
	return nil
}

func (r *RenderCache) Delete(ctx context.Context, notebookId uuid.UUID) error {
	r.cache.Delete(notebookId.String())
	return nil
}
