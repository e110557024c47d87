package storage

import (
	"context"
	"errors"

	"github.com/garrettladley/ebaynotify/internal/env"
	"github.com/garrettladley/ebaynotify/internal/xslog"
)

var _ KeyCache = (*TieredKeyCache)(nil)

// TieredKeyCache reads through a local cache into a shared one. Keys found in
// the shared tier are promoted locally.
type TieredKeyCache struct {
	local  KeyCache
	shared KeyCache
}

func NewTieredKeyCache(local KeyCache, shared KeyCache) *TieredKeyCache {
	return &TieredKeyCache{local: local, shared: shared}
}

func (c *TieredKeyCache) Get(ctx context.Context, environment env.Environment, keyID string) (PublicKey, error) {
	key, err := c.local.Get(ctx, environment, keyID)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return PublicKey{}, err
	}

	key, err = c.shared.Get(ctx, environment, keyID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			// shared tier outages degrade to a miss
			xslog.FromContext(ctx).WarnContext(ctx, "shared key cache unavailable",
				xslog.KeyID(keyID),
				xslog.Environment(environment.String()),
				xslog.Error(err),
			)
		}
		return PublicKey{}, ErrNotFound
	}

	if err := c.local.Set(ctx, environment, key); err != nil {
		return PublicKey{}, err
	}
	return key, nil
}

func (c *TieredKeyCache) Set(ctx context.Context, environment env.Environment, key PublicKey) error {
	if err := c.local.Set(ctx, environment, key); err != nil {
		return err
	}
	if err := c.shared.Set(ctx, environment, key); err != nil {
		xslog.FromContext(ctx).WarnContext(ctx, "failed to write shared key cache",
			xslog.KeyID(key.KeyID),
			xslog.Error(err),
		)
	}
	return nil
}
