package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/garrettladley/ebaynotify/internal/env"
)

func testKey(id string) PublicKey {
	return PublicKey{
		KeyID:     id,
		Algorithm: "ECDSA",
		Digest:    "SHA1",
		Key:       "-----BEGIN PUBLIC KEY-----" + id + "-----END PUBLIC KEY-----",
	}
}

func TestMemoryKeyCache(t *testing.T) {
	t.Parallel()

	cache, err := NewMemoryKeyCache(2)
	if err != nil {
		t.Fatalf("NewMemoryKeyCache() error = %v", err)
	}
	ctx := t.Context()

	if _, err := cache.Get(ctx, env.Production, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() on empty cache error = %v, want ErrNotFound", err)
	}

	want := testKey("a")
	if err := cache.Set(ctx, env.Production, want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := cache.Get(ctx, env.Production, "a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoryKeyCacheScopesByEnvironment(t *testing.T) {
	t.Parallel()

	cache, err := NewMemoryKeyCache(10)
	if err != nil {
		t.Fatalf("NewMemoryKeyCache() error = %v", err)
	}
	ctx := t.Context()

	sandboxKey := testKey("a")
	sandboxKey.Key = "SANDBOX"
	if err := cache.Set(ctx, env.Sandbox, sandboxKey); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := cache.Get(ctx, env.Production, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(PRODUCTION) error = %v, want ErrNotFound", err)
	}

	productionKey := testKey("a")
	if err := cache.Set(ctx, env.Production, productionKey); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	for environment, want := range map[env.Environment]PublicKey{env.Sandbox: sandboxKey, env.Production: productionKey} {
		got, err := cache.Get(ctx, environment, "a")
		if err != nil {
			t.Fatalf("Get(%s) error = %v", environment, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Get(%s) mismatch (-want +got):\n%s", environment, diff)
		}
	}
}

func TestMemoryKeyCacheEvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	const size = 3
	cache, err := NewMemoryKeyCache(size)
	if err != nil {
		t.Fatalf("NewMemoryKeyCache() error = %v", err)
	}
	ctx := t.Context()

	for i := range size {
		if err := cache.Set(ctx, env.Production, testKey(fmt.Sprintf("k%d", i))); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}
	// touch k0 so k1 becomes the eviction candidate
	if _, err := cache.Get(ctx, env.Production, "k0"); err != nil {
		t.Fatalf("Get(k0) error = %v", err)
	}
	if err := cache.Set(ctx, env.Production, testKey("k3")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if got := cache.Len(); got != size {
		t.Errorf("Len() = %d, want %d", got, size)
	}
	if _, err := cache.Get(ctx, env.Production, "k1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(k1) error = %v, want ErrNotFound", err)
	}
	for _, id := range []string{"k0", "k2", "k3"} {
		if _, err := cache.Get(ctx, env.Production, id); err != nil {
			t.Errorf("Get(%s) error = %v", id, err)
		}
	}
}

func TestMemoryKeyCacheDefaultSize(t *testing.T) {
	t.Parallel()

	cache, err := NewMemoryKeyCache(0)
	if err != nil {
		t.Fatalf("NewMemoryKeyCache() error = %v", err)
	}
	ctx := t.Context()

	for i := range DefaultKeyCacheSize + 1 {
		if err := cache.Set(ctx, env.Production, testKey(fmt.Sprintf("k%d", i))); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}
	if got := cache.Len(); got != DefaultKeyCacheSize {
		t.Errorf("Len() = %d, want %d", got, DefaultKeyCacheSize)
	}
	if _, err := cache.Get(ctx, env.Production, "k0"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(k0) error = %v, want ErrNotFound", err)
	}
}
