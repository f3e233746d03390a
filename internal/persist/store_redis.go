package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/questhub/questhub/internal/platform/cache"
)

// RedisStore is a Redis/Dragonfly-backed BlobStore. The state graph is
// hundreds of records at most, so whole-blob writes per mutation are
// well within reach; the cache wrapper's size guard catches anything
// that is not.
type RedisStore struct {
	cache *cache.Cache
}

// NewRedisStore wraps an already-connected cache client.
func NewRedisStore(c *cache.Cache) *RedisStore {
	return &RedisStore{cache: c}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	blob, err := s.cache.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return blob, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, data []byte) error {
	if err := s.cache.SetBlob(ctx, key, data); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.cache.Client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
