// internal/imagecache/cache.go
package imagecache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ecoscan-workers/internal/common/logger"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

var (
	ErrPlaceNameRequired     = errors.New("placeName is required")
	ErrImageGenerationFailed = errors.New("IMAGE_GENERATION_FAILED")
	ErrCacheFailed           = errors.New("IMAGE_CACHE_FAILED")
)

// Fetcher produces an image URL for a place.
type Fetcher interface {
	Fetch(ctx context.Context, placeName, placeType string) (string, error)
}

type Config struct {
	TTL       time.Duration
	KeyPrefix string
	// FetchTimeout bounds one shared lookup, independent of any caller.
	FetchTimeout time.Duration
}

const defaultFetchTimeout = 60 * time.Second

// Cache is a get-or-fetch store for generated destination images. Lookups go
// through an in-process map, then Redis, then the Fetcher. Concurrent misses
// for the same key share one fetch.
type Cache struct {
	fetcher Fetcher
	redis   redis.Cmdable
	config  Config
	logger  logger.Logger

	mu    sync.RWMutex
	local map[string]string
	group singleflight.Group
}

// New builds a Cache. rdb may be nil, in which case only the in-process tier
// is used.
func New(fetcher Fetcher, rdb redis.Cmdable, cfg Config, log logger.Logger) *Cache {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "destination-image:"
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	return &Cache{
		fetcher: fetcher,
		redis:   rdb,
		config:  cfg,
		logger:  log.WithFields(map[string]interface{}{"component": "imagecache"}),
		local:   make(map[string]string),
	}
}

// Key is the cache key of a place.
func Key(placeName, placeType string) string {
	return placeName + "-" + placeType
}

// Get returns the image URL for a place, fetching it on a miss.
func (c *Cache) Get(ctx context.Context, placeName, placeType string) (string, error) {
	if placeName == "" {
		return "", ErrPlaceNameRequired
	}

	key := Key(placeName, placeType)
	if url, ok := c.lookupLocal(key); ok {
		return url, nil
	}

	// The flight outlives any single caller; each caller only waits on it
	// until its own ctx is done.
	ch := c.group.DoChan(key, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.config.FetchTimeout)
		defer cancel()

		// Another flight may have filled the entry since the first check.
		if url, ok := c.lookupLocal(key); ok {
			return url, nil
		}
		if url, ok := c.lookupRemote(ctx, key); ok {
			c.storeLocal(key, url)
			return url, nil
		}

		url, err := c.fetcher.Fetch(ctx, placeName, placeType)
		if err != nil {
			return "", err
		}

		c.storeLocal(key, url)
		c.storeRemote(ctx, key, url)
		return url, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if res.Err != nil {
		return "", res.Err
	}

	c.logger.Debug("image resolved", map[string]interface{}{
		"key":    key,
		"shared": res.Shared,
	})
	return res.Val.(string), nil
}

// Invalidate drops a place from both tiers so the next Get fetches anew.
func (c *Cache) Invalidate(ctx context.Context, placeName, placeType string) error {
	if placeName == "" {
		return ErrPlaceNameRequired
	}

	key := Key(placeName, placeType)
	c.mu.Lock()
	delete(c.local, key)
	c.mu.Unlock()

	if c.redis == nil {
		return nil
	}
	if err := c.redis.Del(ctx, c.config.KeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrCacheFailed, key, err)
	}
	return nil
}

func (c *Cache) lookupLocal(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	url, ok := c.local[key]
	return url, ok
}

func (c *Cache) storeLocal(key, url string) {
	c.mu.Lock()
	c.local[key] = url
	c.mu.Unlock()
}

func (c *Cache) lookupRemote(ctx context.Context, key string) (string, bool) {
	if c.redis == nil {
		return "", false
	}

	url, err := c.redis.Get(ctx, c.config.KeyPrefix+key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", false
	case err != nil:
		c.logger.Warn("redis lookup failed, fetching instead", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return "", false
	}
	return url, url != ""
}

func (c *Cache) storeRemote(ctx context.Context, key, url string) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Set(ctx, c.config.KeyPrefix+key, url, c.config.TTL).Err(); err != nil {
		c.logger.Warn("redis store failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}
