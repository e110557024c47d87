package storage

import (
	"context"
	"errors"
	"time"

	"github.com/garrettladley/ebaynotify/internal/env"
)

var ErrNotFound = errors.New("key not found")

// PublicKey is a signing key as served by the notification public key endpoint.
type PublicKey struct {
	KeyID     string `json:"keyId"`
	Algorithm string `json:"algorithm"`
	Digest    string `json:"digest"`
	Key       string `json:"key"`
}

// KeyCache stores public keys by environment and key id, so a key fetched
// from one environment is never served to the other.
// Only keys obtained from a successful upstream fetch are stored.
type KeyCache interface {
	// Get returns ErrNotFound when keyID is not cached for environment.
	Get(ctx context.Context, environment env.Environment, keyID string) (PublicKey, error)

	Set(ctx context.Context, environment env.Environment, key PublicKey) error
}

func cacheKey(environment env.Environment, keyID string) string {
	return environment.String() + ":" + keyID
}

type RateLimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) (RateLimitResult, error)
}
