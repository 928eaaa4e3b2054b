package snapshot

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keySnapshot = "snapshot:"

// RedisStore keeps each instance's snapshot in a Redis hash, so state survives
// watcher restarts and multiple watchers can share one Redis.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore wraps an existing Redis client. keyPrefix namespaces all keys
// written by this store; pass "" for none.
func NewRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (s *RedisStore) key(instance string) string {
	return s.keyPrefix + keySnapshot + instance
}

func (s *RedisStore) Get(ctx context.Context, instance, field string) (string, bool, error) {
	v, err := s.client.HGet(ctx, s.key(instance), field).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get snapshot field %s/%s: %w", instance, field, err)
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, instance string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}

	flat := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		flat = append(flat, k, v)
	}

	if err := s.client.HSet(ctx, s.key(instance), flat...).Err(); err != nil {
		return fmt.Errorf("set snapshot %s: %w", instance, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, instance string) error {
	if err := s.client.Del(ctx, s.key(instance)).Err(); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", instance, err)
	}
	return nil
}
