package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// KVStore is a minimal persisted key-value interface. The setup-checklist state
// lives behind it so handlers never depend on a concrete backend.
type KVStore interface {
	GetValue(ctx context.Context, key string) (string, bool, error)
	SetValue(ctx context.Context, key, value string) error
	DeleteValue(ctx context.Context, key string) error
}

type RedisKVStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisKVStore(client *redis.Client, prefix string, ttl time.Duration) *RedisKVStore {
	return &RedisKVStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisKVStore) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

func (s *RedisKVStore) GetValue(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *RedisKVStore) SetValue(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.key(key), value, s.ttl).Err()
}

func (s *RedisKVStore) DeleteValue(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}
