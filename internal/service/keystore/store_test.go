package keystore

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"

	"github.com/garrettladley/ebaynotify/internal/client/ebay"
	"github.com/garrettladley/ebaynotify/internal/env"
	"github.com/garrettladley/ebaynotify/internal/oauth"
	"github.com/garrettladley/ebaynotify/internal/storage"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/oauth2"
)

const testKeyID = "99345a69-2d1a-4e6d-b1f9-5f8e1a1cbd5c"

var testCreds = oauth.AppCredentials{
	ClientID:     "client-id",
	ClientSecret: "client-secret",
	Environment:  env.Production,
}

type fakeTokens struct {
	err   error
	calls atomic.Int32
}

func (f *fakeTokens) AppToken(_ context.Context, _ oauth.AppCredentials) (*oauth2.Token, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &oauth2.Token{AccessToken: "abcde"}, nil
}

type fakeFetcher struct {
	err     error
	release chan struct{}
	calls   atomic.Int32

	mu       sync.Mutex
	gotToken string
	gotEnv   env.Environment
	gotKeyID string
}

func (f *fakeFetcher) GetPublicKey(_ context.Context, environment env.Environment, keyID string, accessToken string) (*ebay.PublicKey, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.gotToken, f.gotEnv, f.gotKeyID = accessToken, environment, keyID
	f.mu.Unlock()

	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &ebay.PublicKey{Algorithm: "ECDSA", Digest: "SHA1", Key: "PEM"}, nil
}

func newMemoryCache(t *testing.T) *storage.MemoryKeyCache {
	t.Helper()
	cache, err := storage.NewMemoryKeyCache(10)
	if err != nil {
		t.Fatalf("NewMemoryKeyCache() error = %v", err)
	}
	return cache
}

func TestGetPublicKeyFetchesAndCaches(t *testing.T) {
	t.Parallel()

	tokens := &fakeTokens{}
	fetcher := &fakeFetcher{}
	cache := newMemoryCache(t)
	store := NewStore(tokens, fetcher, cache)

	want := storage.PublicKey{KeyID: testKeyID, Algorithm: "ECDSA", Digest: "SHA1", Key: "PEM"}

	for range 3 {
		got, err := store.GetPublicKey(t.Context(), testKeyID, testCreds)
		if err != nil {
			t.Fatalf("GetPublicKey() error = %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("GetPublicKey() mismatch (-want +got):\n%s", diff)
		}
	}

	if got := fetcher.calls.Load(); got != 1 {
		t.Errorf("fetch calls = %d, want 1", got)
	}
	if got := tokens.calls.Load(); got != 1 {
		t.Errorf("token calls = %d, want 1", got)
	}
	if fetcher.gotToken != "abcde" || fetcher.gotEnv != env.Production || fetcher.gotKeyID != testKeyID {
		t.Errorf("fetch called with (%q, %q, %q)", fetcher.gotToken, fetcher.gotEnv, fetcher.gotKeyID)
	}
	if _, err := cache.Get(t.Context(), env.Production, testKeyID); err != nil {
		t.Errorf("key not cached: %v", err)
	}
}

func TestGetPublicKeyCacheHitSkipsNetwork(t *testing.T) {
	t.Parallel()

	tokens := &fakeTokens{}
	fetcher := &fakeFetcher{}
	cache := newMemoryCache(t)
	cached := storage.PublicKey{KeyID: testKeyID, Algorithm: "RSA", Digest: "SHA1", Key: "CACHED"}
	if err := cache.Set(t.Context(), env.Production, cached); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := NewStore(tokens, fetcher, cache).GetPublicKey(t.Context(), testKeyID, testCreds)
	if err != nil {
		t.Fatalf("GetPublicKey() error = %v", err)
	}
	if diff := cmp.Diff(cached, got); diff != "" {
		t.Errorf("GetPublicKey() mismatch (-want +got):\n%s", diff)
	}
	if tokens.calls.Load() != 0 || fetcher.calls.Load() != 0 {
		t.Errorf("cache hit made network calls: token=%d fetch=%d", tokens.calls.Load(), fetcher.calls.Load())
	}
}

func TestGetPublicKeyCacheIsScopedByEnvironment(t *testing.T) {
	t.Parallel()

	tokens := &fakeTokens{}
	fetcher := &fakeFetcher{}
	cache := newMemoryCache(t)
	sandboxKey := storage.PublicKey{KeyID: testKeyID, Algorithm: "ECDSA", Digest: "SHA1", Key: "SANDBOX"}
	if err := cache.Set(t.Context(), env.Sandbox, sandboxKey); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := NewStore(tokens, fetcher, cache).GetPublicKey(t.Context(), testKeyID, testCreds)
	if err != nil {
		t.Fatalf("GetPublicKey() error = %v", err)
	}
	if got.Key != "PEM" {
		t.Errorf("GetPublicKey() key = %q, want the production fetch", got.Key)
	}
	if got := fetcher.calls.Load(); got != 1 {
		t.Errorf("fetch calls = %d, want 1", got)
	}
	if fetcher.gotEnv != env.Production {
		t.Errorf("fetched from %q, want %q", fetcher.gotEnv, env.Production)
	}

	cachedSandbox, err := cache.Get(t.Context(), env.Sandbox, testKeyID)
	if err != nil {
		t.Fatalf("Get(SANDBOX) error = %v", err)
	}
	if diff := cmp.Diff(sandboxKey, cachedSandbox); diff != "" {
		t.Errorf("sandbox entry changed (-want +got):\n%s", diff)
	}
}

func TestGetPublicKeyErrors(t *testing.T) {
	t.Parallel()

	apiErr := &ebay.APIError{StatusCode: http.StatusInternalServerError, Message: "boom"}

	tests := []struct {
		name         string
		keyID        string
		tokenErr     error
		fetchErr     error
		wantErr      error
		wantAPIError bool
	}{
		{name: "empty key id", keyID: "", wantErr: ErrInvalidKeyID},
		{
			name:     "token failure",
			keyID:    testKeyID,
			tokenErr: &oauth.UpstreamAuthError{Environment: env.Production, StatusCode: http.StatusUnauthorized, Cause: errors.New("invalid_client")},
			wantErr:  oauth.ErrUpstreamAuth,
		},
		{name: "non 200", keyID: testKeyID, fetchErr: apiErr, wantErr: ErrKeyFetch, wantAPIError: true},
		{name: "transport", keyID: testKeyID, fetchErr: errors.New("connection reset"), wantErr: ErrKeyFetch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tokens := &fakeTokens{err: tt.tokenErr}
			fetcher := &fakeFetcher{err: tt.fetchErr}
			cache := newMemoryCache(t)

			_, err := NewStore(tokens, fetcher, cache).GetPublicKey(t.Context(), tt.keyID, testCreds)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("GetPublicKey() error = %v, want %v", err, tt.wantErr)
			}

			var gotAPIErr *ebay.APIError
			if got := errors.As(err, &gotAPIErr); got != tt.wantAPIError {
				t.Errorf("errors.As(*ebay.APIError) = %v, want %v", got, tt.wantAPIError)
			}

			if cache.Len() != 0 {
				t.Errorf("failed lookup populated the cache")
			}
		})
	}
}

func TestGetPublicKeyFailureIsNotCached(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{err: errors.New("unavailable")}
	store := NewStore(&fakeTokens{}, fetcher, newMemoryCache(t))

	if _, err := store.GetPublicKey(t.Context(), testKeyID, testCreds); err == nil {
		t.Fatal("first GetPublicKey() expected error")
	}

	fetcher.err = nil
	if _, err := store.GetPublicKey(t.Context(), testKeyID, testCreds); err != nil {
		t.Fatalf("second GetPublicKey() error = %v", err)
	}
	if got := fetcher.calls.Load(); got != 2 {
		t.Errorf("fetch calls = %d, want 2", got)
	}
}

func TestGetPublicKeyCoalescesConcurrentMisses(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		const callers = 8

		fetcher := &fakeFetcher{release: make(chan struct{})}
		store := NewStore(&fakeTokens{}, fetcher, newMemoryCache(t))

		var wg sync.WaitGroup
		errs := make(chan error, callers)
		for range callers {
			wg.Go(func() {
				_, err := store.GetPublicKey(t.Context(), testKeyID, testCreds)
				errs <- err
			})
		}

		synctest.Wait()
		close(fetcher.release)
		wg.Wait()
		close(errs)

		for err := range errs {
			if err != nil {
				t.Errorf("GetPublicKey() error = %v", err)
			}
		}
		if got := fetcher.calls.Load(); got != 1 {
			t.Errorf("fetch calls = %d, want 1", got)
		}
	})
}

func TestGetPublicKeyHonorsCallerCancellation(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		fetcher := &fakeFetcher{release: make(chan struct{})}
		store := NewStore(&fakeTokens{}, fetcher, newMemoryCache(t))

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() {
			_, err := store.GetPublicKey(ctx, testKeyID, testCreds)
			done <- err
		}()

		synctest.Wait()
		cancel()
		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Errorf("GetPublicKey() error = %v, want context.Canceled", err)
		}

		close(fetcher.release)
		synctest.Wait()
	})
}
