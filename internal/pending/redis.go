package pending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "pending:activation:"

// RedisStore keeps pending activations in Redis so multiple API instances can
// share them. TTL eviction is delegated to Redis key expiry and Take maps to
// GETDEL, which is atomic server-side.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a Redis-backed store evicting entries after ttl.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Put stores the activation under the prefixed key with the store TTL.
func (s *RedisStore) Put(ctx context.Context, key string, value Activation) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode pending activation: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store pending activation: %w", err)
	}
	return nil
}

// Take atomically reads and removes the activation for key.
func (s *RedisStore) Take(ctx context.Context, key string) (Activation, bool, error) {
	payload, err := s.client.GetDel(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return Activation{}, false, nil
	}
	if err != nil {
		return Activation{}, false, fmt.Errorf("take pending activation: %w", err)
	}

	var value Activation
	if err := json.Unmarshal([]byte(payload), &value); err != nil {
		return Activation{}, false, fmt.Errorf("decode pending activation: %w", err)
	}
	return value, true, nil
}

// Delete removes the entry if present.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("delete pending activation: %w", err)
	}
	return nil
}
