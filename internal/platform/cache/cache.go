// Package cache provides the Redis client used by the redis storage
// backend for state blobs.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// MaxBlobSize caps values written through SetBlob. The state graph is a
// few hundred kilobytes at most; anything larger means a runaway
// payload, not real state.
const MaxBlobSize = 8 << 20

// Cache wraps a Redis client configured for state blob storage.
type Cache struct {
	Client *redis.Client
}

// ParseURL validates a Redis connection URL.
func ParseURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("redis URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	return opts, nil
}

// New connects to Redis and verifies the connection with a ping.
func New(ctx context.Context, url string) (*Cache, error) {
	opts, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	// State blobs are small; short timeouts keep a dead Redis from
	// stalling save paths.
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &Cache{Client: client}, nil
}

// SetBlob stores a value without expiry, rejecting payloads over
// MaxBlobSize before they reach the wire.
func (c *Cache) SetBlob(ctx context.Context, key string, data []byte) error {
	if len(data) > MaxBlobSize {
		return fmt.Errorf("blob %q is %d bytes, limit %d", key, len(data), MaxBlobSize)
	}
	return c.Client.Set(ctx, key, data, 0).Err()
}

// Close shuts down the client.
func (c *Cache) Close() error {
	return c.Client.Close()
}

// HealthCheck verifies the connection is alive.
func (c *Cache) HealthCheck(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}
