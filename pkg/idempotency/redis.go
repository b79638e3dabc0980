package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix    = "idem"
	pendingValue = "-"
)

// RedisStore remembers which resource an idempotency key produced so every
// instance can answer a retried request with the original result.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a store using the provided Redis client and TTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL into a client.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func (s *RedisStore) key(scope, key string) string {
	return fmt.Sprintf("%s:%s:%s", scope, keyPrefix, key)
}

// Claim records key as in flight. When the key was already claimed it returns
// claimed=false and the resource ID stored by Complete, or "" while the first
// request has not finished.
func (s *RedisStore) Claim(ctx context.Context, scope, key string) (resourceID string, claimed bool, err error) {
	k := s.key(scope, key)
	ok, err := s.client.SetNX(ctx, k, pendingValue, s.ttl).Result()
	if err != nil {
		return "", false, err
	}
	if ok {
		return "", true, nil
	}
	val, err := s.client.Get(ctx, k).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Expired between SETNX and GET; let the caller retry.
			return "", false, nil
		}
		return "", false, err
	}
	if val == pendingValue {
		return "", false, nil
	}
	return val, false, nil
}

// Complete stores the resource produced for a claimed key.
func (s *RedisStore) Complete(ctx context.Context, scope, key, resourceID string) error {
	return s.client.Set(ctx, s.key(scope, key), resourceID, s.ttl).Err()
}

// Release forgets a claimed key, used when processing failed so the caller
// may retry.
func (s *RedisStore) Release(ctx context.Context, scope, key string) error {
	return s.client.Del(ctx, s.key(scope, key)).Err()
}
