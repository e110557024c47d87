package storage

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/garrettladley/ebaynotify/internal/env"
)

const DefaultKeyCacheSize = 100

var _ KeyCache = (*MemoryKeyCache)(nil)

// MemoryKeyCache is a bounded least-recently-used key cache. Entries never expire.
type MemoryKeyCache struct {
	entries *lru.Cache[string, PublicKey]
}

func NewMemoryKeyCache(size int) (*MemoryKeyCache, error) {
	if size <= 0 {
		size = DefaultKeyCacheSize
	}
	entries, err := lru.New[string, PublicKey](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create key cache: %w", err)
	}
	return &MemoryKeyCache{entries: entries}, nil
}

func (c *MemoryKeyCache) Get(_ context.Context, environment env.Environment, keyID string) (PublicKey, error) {
	key, ok := c.entries.Get(cacheKey(environment, keyID))
	if !ok {
		return PublicKey{}, ErrNotFound
	}
	return key, nil
}

func (c *MemoryKeyCache) Set(_ context.Context, environment env.Environment, key PublicKey) error {
	c.entries.Add(cacheKey(environment, key.KeyID), key)
	return nil
}

func (c *MemoryKeyCache) Len() int {
	return c.entries.Len()
}
