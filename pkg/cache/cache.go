package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/webyarden/webyarden-backend/pkg/logger"
)

// Well-known read model keys.
const (
	KeyServicesActive  = "services:active"
	KeyPacksActive     = "packs:active"
	KeyProjectsActive  = "projects:active"
	KeyDiscountsActive = "discounts:active"
)

type store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CacheKey(name string) string
}

// Cache stores JSON encoded read models in redis.
// A nil *Cache is valid and never caches.
type Cache struct {
	store store
	ttl   time.Duration
	logg  *logger.Logger
}

// New builds a cache with the given default TTL.
func New(s store, ttl time.Duration, logg *logger.Logger) (*Cache, error) {
	if s == nil {
		return nil, fmt.Errorf("cache store required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive")
	}
	return &Cache{store: s, ttl: ttl, logg: logg}, nil
}

// Get decodes the cached value into dest and reports whether it was present.
func (c *Cache) Get(ctx context.Context, name string, dest any) (bool, error) {
	if c == nil {
		return false, nil
	}
	raw, err := c.store.Get(ctx, c.store.CacheKey(name))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", name, err)
	}
	return true, nil
}

// Set encodes value and stores it for the default TTL.
func (c *Cache) Set(ctx context.Context, name string, value any) error {
	if c == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cached %s: %w", name, err)
	}
	return c.store.Set(ctx, c.store.CacheKey(name), payload, c.ttl)
}

// Invalidate drops the named entries.
func (c *Cache) Invalidate(ctx context.Context, names ...string) {
	if c == nil || len(names) == 0 {
		return
	}
	keys := make([]string, 0, len(names))
	for _, name := range names {
		keys = append(keys, c.store.CacheKey(name))
	}
	if err := c.store.Del(ctx, keys...); err != nil {
		c.warn(ctx, "cache.invalidate_failed", names[0], err)
	}
}

// Remember returns the cached value for name, or loads, stores and returns it.
// Cache failures are logged and fall through to load.
func Remember[T any](ctx context.Context, c *Cache, name string, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if hit, err := c.Get(ctx, name, &cached); err != nil {
		c.warn(ctx, "cache.read_failed", name, err)
	} else if hit {
		return cached, nil
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	if err := c.Set(ctx, name, value); err != nil {
		c.warn(ctx, "cache.write_failed", name, err)
	}
	return value, nil
}

func (c *Cache) warn(ctx context.Context, msg, name string, err error) {
	if c == nil || c.logg == nil {
		return
	}
	ctx = c.logg.WithFields(ctx, map[string]any{"cache_key": name, "error": err.Error()})
	c.logg.Warn(ctx, msg)
}
