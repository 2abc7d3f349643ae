// Package rediscache wraps the Redis client used by the cache tools. TTL
// bookkeeping lives entirely in Redis; the bridge never reads it back.
package rediscache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"mcpdev/internal/domain"
)

type Client struct {
	rdb *redis.Client
}

func NewClient(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, domain.E(domain.CodeInvalidArgument, "rediscache", "parse redis url", err)
	}
	return &Client{rdb: redis.NewClient(opts)}, nil
}

// Ping verifies connectivity at startup.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return domain.E(domain.CodeUnavailable, "rediscache", "ping", err)
	}
	return nil
}

func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return domain.E(domain.CodeUnavailable, "rediscache", "set", err)
	}
	return nil
}

// Get returns the value and whether the key exists. A missing key is not an
// error.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, domain.E(domain.CodeUnavailable, "rediscache", "get", err)
	}
	return val, true, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
