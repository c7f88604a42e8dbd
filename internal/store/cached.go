package store

import (
	"context"
	"fmt"
	"time"

	"github.com/voyagen/bretontv/internal/cache"
	"github.com/voyagen/bretontv/internal/logging"
	"github.com/voyagen/bretontv/internal/models"
)

// Cache TTLs for catalog reads.
const (
	ttlSources  = 2 * time.Minute
	ttlChannels = 1 * time.Minute
)

// CachedStore wraps a Store with a Redis caching layer. Reads are served
// from cache when possible; writes invalidate the affected keys.
type CachedStore struct {
	inner Store
	cache *cache.Redis
}

// NewCachedStore creates a CachedStore that wraps inner with Redis caching.
func NewCachedStore(inner Store, c *cache.Redis) *CachedStore {
	return &CachedStore{inner: inner, cache: c}
}

func (c *CachedStore) ListSources(ctx context.Context) ([]models.Source, error) {
	const key = "sources:all"
	if v, err := cache.Get[[]models.Source](ctx, c.cache, key); err == nil {
		return v, nil
	}
	sources, err := c.inner.ListSources(ctx)
	if err != nil {
		return nil, err
	}
	if err := cache.Set(ctx, c.cache, key, sources, ttlSources); err != nil {
		logging.Warn("cache: set %s: %v", key, err)
	}
	return sources, nil
}

func (c *CachedStore) ListChannels(ctx context.Context, sourceID *int64) ([]models.Channel, error) {
	key := channelsKey(sourceID)
	if v, err := cache.Get[[]models.Channel](ctx, c.cache, key); err == nil {
		return v, nil
	}
	channels, err := c.inner.ListChannels(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if err := cache.Set(ctx, c.cache, key, channels, ttlChannels); err != nil {
		logging.Warn("cache: set %s: %v", key, err)
	}
	return channels, nil
}

func (c *CachedStore) UpsertSource(ctx context.Context, location string) (int64, error) {
	id, err := c.inner.UpsertSource(ctx, location)
	if err != nil {
		return 0, err
	}
	c.invalidate(ctx, "sources:all")
	return id, nil
}

func (c *CachedStore) ReplaceChannels(ctx context.Context, sourceID int64, channels []models.Channel) error {
	if err := c.inner.ReplaceChannels(ctx, sourceID, channels); err != nil {
		return err
	}
	c.invalidate(ctx, "sources:all")
	if err := cache.DelPattern(ctx, c.cache, "channels:*"); err != nil {
		logging.Warn("cache: del pattern channels:*: %v", err)
	}
	return nil
}

// invalidate deletes exact cache keys, logging any errors.
func (c *CachedStore) invalidate(ctx context.Context, keys ...string) {
	if err := cache.Del(ctx, c.cache, keys...); err != nil {
		logging.Warn("cache: del %v: %v", keys, err)
	}
}

func channelsKey(sourceID *int64) string {
	if sourceID == nil {
		return "channels:all"
	}
	return fmt.Sprintf("channels:%d", *sourceID)
}
