package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	go_json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/garrettladley/ebaynotify/internal/env"
)

const keyCacheKeyPrefix = "ebay:public_key:"

var _ KeyCache = (*RedisKeyCache)(nil)

type RedisConfig struct {
	Client *redis.Client
	TTL    time.Duration
}

// RedisKeyCache shares keys between replicas. Entries expire after TTL so a
// rotated key is eventually refetched.
type RedisKeyCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisKeyCache(cfg RedisConfig) *RedisKeyCache {
	return &RedisKeyCache{client: cfg.Client, ttl: cfg.TTL}
}

func (c *RedisKeyCache) Get(ctx context.Context, environment env.Environment, keyID string) (PublicKey, error) {
	data, err := c.client.Get(ctx, keyCacheKeyPrefix+cacheKey(environment, keyID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return PublicKey{}, ErrNotFound
	}
	if err != nil {
		return PublicKey{}, fmt.Errorf("failed to get public key: %w", err)
	}

	var key PublicKey
	if err := go_json.Unmarshal(data, &key); err != nil {
		return PublicKey{}, fmt.Errorf("failed to unmarshal public key: %w", err)
	}
	return key, nil
}

func (c *RedisKeyCache) Set(ctx context.Context, environment env.Environment, key PublicKey) error {
	data, err := go_json.Marshal(key)
	if err != nil {
		return fmt.Errorf("failed to marshal public key: %w", err)
	}

	if err := c.client.Set(ctx, keyCacheKeyPrefix+cacheKey(environment, key.KeyID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set public key: %w", err)
	}
	return nil
}
