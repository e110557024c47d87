package webhook

import (
	"bytes"
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // matches eBay's signing digest
	"crypto/x509"
	"encoding/base64"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/garrettladley/ebaynotify/internal/oauth"
	"github.com/garrettladley/ebaynotify/internal/storage"
	go_json "github.com/goccy/go-json"
)

const testKeyID = "99345a69-2d1a-4e6d-b1f9-5f8e1a1cbd5c"

type signer struct {
	pemKey string
	sign   func(digest []byte) []byte
	alg    string
}

// oneLinePEM renders a key the way the public key endpoint serves it.
func oneLinePEM(t *testing.T, pub crypto.PublicKey) string {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		t.Fatalf("MarshalPKIXPublicKey() error = %v", err)
	}
	return keyStart + base64.StdEncoding.EncodeToString(der) + keyEnd
}

func newECDSASigner(t *testing.T) signer {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	return signer{
		pemKey: oneLinePEM(t, &priv.PublicKey),
		alg:    "ECDSA",
		sign: func(digest []byte) []byte {
			sig, err := ecdsa.SignASN1(rand.Reader, priv, digest)
			if err != nil {
				t.Fatalf("SignASN1() error = %v", err)
			}
			return sig
		},
	}
}

func newRSASigner(t *testing.T) signer {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	return signer{
		pemKey: oneLinePEM(t, &priv.PublicKey),
		alg:    "RSA",
		sign: func(digest []byte) []byte {
			sig, err := rsa.SignPKCS1v15(nil, priv, crypto.SHA1, digest)
			if err != nil {
				t.Fatalf("SignPKCS1v15() error = %v", err)
			}
			return sig
		},
	}
}

// header signs the compact form of body and returns the X-EBAY-SIGNATURE value.
func (s signer) header(t *testing.T, body []byte) string {
	t.Helper()
	var buf bytes.Buffer
	if err := go_json.Compact(&buf, body); err != nil {
		t.Fatalf("Compact() error = %v", err)
	}
	digest := sha1.Sum(buf.Bytes()) //nolint:gosec // matches eBay's signing digest
	return encodeEnvelope(t, Envelope{
		Algorithm: s.alg,
		KeyID:     testKeyID,
		Signature: base64.StdEncoding.EncodeToString(s.sign(digest[:])),
		Digest:    "SHA1",
	})
}

func encodeEnvelope(t *testing.T, e Envelope) string {
	t.Helper()
	data, err := go_json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	return base64.StdEncoding.EncodeToString(data)
}

type fakeResolver struct {
	mu    sync.Mutex
	keys  map[string]string
	err   error
	calls atomic.Int32
	creds oauth.AppCredentials
}

func (r *fakeResolver) GetPublicKey(_ context.Context, keyID string, creds oauth.AppCredentials) (storage.PublicKey, error) {
	r.calls.Add(1)
	r.mu.Lock()
	r.creds = creds
	r.mu.Unlock()
	if r.err != nil {
		return storage.PublicKey{}, r.err
	}
	key, ok := r.keys[keyID]
	if !ok {
		return storage.PublicKey{}, storage.ErrNotFound
	}
	return storage.PublicKey{KeyID: keyID, Algorithm: "ECDSA", Digest: "SHA1", Key: key}, nil
}
