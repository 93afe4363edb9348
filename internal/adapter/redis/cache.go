package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/YelzhanWeb/fooddelivery/internal/adapter/logger"
	"github.com/YelzhanWeb/fooddelivery/internal/config"
	"github.com/YelzhanWeb/fooddelivery/internal/interfaces"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

type cache struct {
	client   *goredis.Client
	log      logger.Logger
	disabled bool
}

// NewClient builds a go-redis client from config. URL wins over Addr.
func NewClient(cfg config.RedisConfig) (*goredis.Client, error) {
	opts := &goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.URL != "" {
		parsed, err := goredis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		opts = parsed
	}
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	return goredis.NewClient(opts), nil
}

// NewCache pings the client once. When Redis cannot be reached every
// operation turns into a no-op for the lifetime of the cache.
func NewCache(ctx context.Context, client *goredis.Client, log logger.Logger) interfaces.Cache {
	c := &cache{client: client, log: log}

	if client == nil {
		c.disabled = true
		return c
	}

	if err := client.Ping(ctx).Err(); err != nil {
		log.Error("cache_connect_failed", "Redis is unreachable, caching disabled", logger.RequestID(ctx), nil, err)
		c.disabled = true
	}
	return c
}

func (c *cache) Get(ctx context.Context, key string, dest any) bool {
	if c.disabled {
		return false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.log.Error("cache_get_failed", "Failed to read cache entry", logger.RequestID(ctx),
				map[string]interface{}{"key": key}, err)
		}
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.log.Warn("cache_decode_failed", "Discarding undecodable cache entry", logger.RequestID(ctx),
			map[string]interface{}{"key": key}, err)
		return false
	}
	return true
}

// Set never fails the caller; write errors are only logged.
func (c *cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c.disabled {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.log.Error("cache_set_failed", "Failed to write cache entry", logger.RequestID(ctx),
			map[string]interface{}{"key": key}, err)
	}
	return nil
}

// Delete reports store errors so post-commit actions can surface them.
// Deleting keys that do not exist is not an error.
func (c *cache) Delete(ctx context.Context, keys ...string) error {
	if c.disabled || len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Error("cache_delete_failed", "Failed to delete cache entries", logger.RequestID(ctx),
			map[string]interface{}{"keys": keys}, err)
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}
	return nil
}

func (c *cache) InvalidateRestaurant(ctx context.Context, restaurantID uuid.UUID) error {
	return c.Delete(ctx, interfaces.RestaurantCacheKeys(restaurantID)...)
}
