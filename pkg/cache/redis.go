package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries in Redis so several preview servers share renders.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to addr, which is either host:port or a
// redis:// URL, and verifies the connection with PING. Keys are stored under
// the "formation:" namespace.
func NewRedisCache(ctx context.Context, addr string) (*RedisCache, error) {
	opts, err := redisOptions(addr)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	err = RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx).Err(); err != nil {
			return Retryable(fmt.Errorf("%w: %v", ErrUnavailable, err))
		}
		return nil
	})
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisCache{client: client, prefix: "formation:"}, nil
}

func redisOptions(addr string) (*redis.Options, error) {
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		return redis.ParseURL(addr)
	}
	if addr == "" {
		return nil, fmt.Errorf("redis address is empty")
	}
	return &redis.Options{Addr: addr}, nil
}

// Get retrieves a value from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, false, nil
	case err != nil:
		return nil, false, c.wrap(err)
	}
	return data, true, nil
}

// Set stores a value with the given TTL. A non-positive TTL stores the
// entry without expiration.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return c.wrap(c.client.Set(ctx, c.prefix+key, data, ttl).Err())
}

// Delete removes a value.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.wrap(c.client.Del(ctx, c.prefix+key).Err())
}

// Close closes the client connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.ErrClosed) {
		return ErrClosed
	}
	return fmt.Errorf("redis: %w", err)
}

// Ensure RedisCache implements Cache.
var _ Cache = (*RedisCache)(nil)
