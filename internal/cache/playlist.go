package cache

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/voyagen/bretontv/internal/logging"
	"github.com/voyagen/bretontv/internal/models"
)

// DefaultPlaylistTTL is how long a fetched remote playlist stays cached.
const DefaultPlaylistTTL = 10 * time.Minute

// PlaylistCache stores the parsed channels of remote playlists, keyed by URL.
type PlaylistCache struct {
	redis *Redis
	ttl   time.Duration
}

// NewPlaylistCache returns a PlaylistCache; ttl <= 0 selects DefaultPlaylistTTL.
func NewPlaylistCache(r *Redis, ttl time.Duration) *PlaylistCache {
	if ttl <= 0 {
		ttl = DefaultPlaylistTTL
	}
	return &PlaylistCache{redis: r, ttl: ttl}
}

// Channels returns the cached channels for url. A miss or a Redis failure
// reports ok=false so the caller fetches the playlist itself.
func (c *PlaylistCache) Channels(ctx context.Context, url string) ([]models.Channel, bool) {
	key := playlistKey(url)
	channels, err := Get[[]models.Channel](ctx, c.redis, key)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logging.Warn("cache: get %s: %v", key, err)
		}
		return nil, false
	}
	return channels, true
}

// Store caches channels for url. Failures are logged, not returned.
func (c *PlaylistCache) Store(ctx context.Context, url string, channels []models.Channel) {
	key := playlistKey(url)
	if err := Set(ctx, c.redis, key, channels, c.ttl); err != nil {
		logging.Warn("cache: set %s: %v", key, err)
	}
}

func playlistKey(url string) string {
	h := sha256.Sum256([]byte(url))
	return fmt.Sprintf("playlist:%x", h[:8])
}
