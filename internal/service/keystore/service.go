package keystore

import (
	"context"
	"errors"
	"fmt"

	"github.com/garrettladley/ebaynotify/internal/env"
	"github.com/garrettladley/ebaynotify/internal/oauth"
	"github.com/garrettladley/ebaynotify/internal/storage"
)

var (
	ErrInvalidKeyID = errors.New("key id is required")
	ErrKeyFetch     = errors.New("public key fetch failed")
)

type Service interface {
	// GetPublicKey returns the signing key for keyID, fetching it from eBay
	// with an application token for creds on a cache miss.
	// Returns ErrInvalidKeyID if keyID is empty.
	// Returns an error matching oauth.ErrUpstreamAuth if no token could be obtained.
	// Returns an error matching ErrKeyFetch if the key endpoint call fails.
	GetPublicKey(ctx context.Context, keyID string, creds oauth.AppCredentials) (storage.PublicKey, error)
}

// KeyFetchError carries the failed key lookup. Cause is the transport error or
// the *ebay.APIError describing the non-200 response.
type KeyFetchError struct {
	KeyID       string
	Environment env.Environment
	Cause       error
}

func (e *KeyFetchError) Error() string {
	return fmt.Sprintf("%s: %s in %s: %v", ErrKeyFetch, e.KeyID, e.Environment, e.Cause)
}

func (e *KeyFetchError) Unwrap() error { return e.Cause }

func (e *KeyFetchError) Is(target error) bool { return target == ErrKeyFetch }
