package cache

import (
	"context"
	"errors"

	redis "github.com/redis/go-redis/v9"

	"previewServer/backend/internal/prefs"
)

// RedisStorage is the production prefs.Storage backend.
type RedisStorage struct {
	rdb *redis.Client
}

func NewRedisStorage(rdb *redis.Client) *RedisStorage {
	return &RedisStorage{rdb: rdb}
}

func (s *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", prefs.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (s *RedisStorage) Set(ctx context.Context, key, value string) error {
	// Preference records have no TTL; they live until Clear.
	return s.rdb.Set(ctx, key, value, 0).Err()
}

func (s *RedisStorage) Del(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
