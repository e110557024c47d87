package keystore

import (
	"context"
	"errors"
	"time"

	"github.com/garrettladley/ebaynotify/internal/client/ebay"
	"github.com/garrettladley/ebaynotify/internal/env"
	"github.com/garrettladley/ebaynotify/internal/metrics"
	"github.com/garrettladley/ebaynotify/internal/oauth"
	"github.com/garrettladley/ebaynotify/internal/storage"
	"github.com/garrettladley/ebaynotify/internal/xslog"
	"golang.org/x/sync/singleflight"
)

type KeyFetcher interface {
	GetPublicKey(ctx context.Context, environment env.Environment, keyID string, accessToken string) (*ebay.PublicKey, error)
}

var (
	_ Service    = (*Store)(nil)
	_ KeyFetcher = (*ebay.Client)(nil)
)

type Store struct {
	tokens  oauth.TokenProvider
	fetcher KeyFetcher
	cache   storage.KeyCache
	metrics *metrics.Metrics

	group singleflight.Group
}

type Option func(*Store)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

func NewStore(tokens oauth.TokenProvider, fetcher KeyFetcher, cache storage.KeyCache, opts ...Option) *Store {
	s := &Store{
		tokens:  tokens,
		fetcher: fetcher,
		cache:   cache,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) GetPublicKey(ctx context.Context, keyID string, creds oauth.AppCredentials) (storage.PublicKey, error) {
	logger := xslog.FromContext(ctx)

	if keyID == "" {
		return storage.PublicKey{}, ErrInvalidKeyID
	}

	key, err := s.cache.Get(ctx, creds.Environment, keyID)
	if err == nil {
		logger.DebugContext(ctx, "public key lookup", xslog.KeyID(keyID), xslog.CacheHit(true))
		s.metrics.RecordKeyCacheLookup(true)
		return key, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		logger.WarnContext(ctx, "public key cache error", xslog.KeyID(keyID), xslog.ErrorGroup(err))
	}
	s.metrics.RecordKeyCacheLookup(false)
	logger.DebugContext(ctx, "public key lookup", xslog.KeyID(keyID), xslog.CacheHit(false))

	// concurrent misses for one key share a single upstream fetch
	flightKey := creds.Environment.String() + ":" + keyID
	ch := s.group.DoChan(flightKey, func() (any, error) {
		return s.fetch(context.WithoutCancel(ctx), keyID, creds)
	})

	select {
	case <-ctx.Done():
		return storage.PublicKey{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return storage.PublicKey{}, res.Err
		}
		return res.Val.(storage.PublicKey), nil
	}
}

func (s *Store) fetch(ctx context.Context, keyID string, creds oauth.AppCredentials) (storage.PublicKey, error) {
	logger := xslog.FromContext(ctx)

	token, err := s.tokens.AppToken(ctx, creds)
	if err != nil {
		s.metrics.RecordUpstreamError(metrics.OperationToken)
		return storage.PublicKey{}, err
	}

	logger.DebugContext(ctx, "fetching public key",
		xslog.KeyID(keyID),
		xslog.Environment(creds.Environment.String()),
	)

	start := time.Now()
	resp, err := s.fetcher.GetPublicKey(ctx, creds.Environment, keyID, token.AccessToken)
	s.metrics.RecordKeyFetch(creds.Environment.String(), time.Since(start))
	if err != nil {
		s.metrics.RecordUpstreamError(metrics.OperationPublicKey)
		return storage.PublicKey{}, &KeyFetchError{
			KeyID:       keyID,
			Environment: creds.Environment,
			Cause:       err,
		}
	}

	key := storage.PublicKey{
		KeyID:     keyID,
		Algorithm: resp.Algorithm,
		Digest:    resp.Digest,
		Key:       resp.Key,
	}

	if cacheErr := s.cache.Set(ctx, creds.Environment, key); cacheErr != nil {
		logger.WarnContext(ctx, "failed to cache public key", xslog.KeyID(keyID), xslog.ErrorGroup(cacheErr))
	}

	return key, nil
}
