package common

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nosmoke-app/backend/pkg/config"
)

// Cache wraps the Redis client for rate limiting and short-lived lookups
type Cache struct {
	client *redis.Client
}

// NewCache creates a cache instance and verifies connectivity
func NewCache(cfg *config.RedisConfig) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Allow counts a hit against key within a fixed window and reports whether
// the request is within the limit. The first hit in a window sets the
// window's expiry.
func (c *Cache) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate counter: %w", err)
	}
	if count == 1 {
		if err := c.client.Expire(ctx, key, window).Err(); err != nil {
			return false, fmt.Errorf("failed to expire rate counter: %w", err)
		}
	}
	return count <= int64(limit), nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}
