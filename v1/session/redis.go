package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisStore is a Store backed by Redis string keys.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore returns a RedisStore that namespaces keys with prefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Save implements Store.Save.
func (s *RedisStore) Save(ctx context.Context, name, id string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.prefix+name, id, ttl).Err(); err != nil {
		return fmt.Errorf("session: save %s: %w", name, err)
	}
	return nil
}

// Load implements Store.Load.
func (s *RedisStore) Load(ctx context.Context, name string) (string, error) {
	id, err := s.client.Get(ctx, s.prefix+name).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("session: load %s: %w", name, err)
	}
	return id, nil
}

// Delete implements Store.Delete.
func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := s.client.Del(ctx, s.prefix+name).Err(); err != nil {
		return fmt.Errorf("session: delete %s: %w", name, err)
	}
	return nil
}
