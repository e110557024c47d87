package webhook

import (
	"bytes"
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // eBay signs notifications with SHA-1
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"strings"

	"github.com/garrettladley/ebaynotify/internal/oauth"
	"github.com/garrettladley/ebaynotify/internal/storage"
	"github.com/garrettladley/ebaynotify/internal/xslog"
	go_json "github.com/goccy/go-json"
)

const (
	keyStart = "-----BEGIN PUBLIC KEY-----"
	keyEnd   = "-----END PUBLIC KEY-----"
)

// Envelope is the decoded X-EBAY-SIGNATURE header.
type Envelope struct {
	Algorithm string `json:"alg"`
	KeyID     string `json:"kid"`
	Signature string `json:"signature"`
	Digest    string `json:"digest"`
}

// DecodeEnvelope decodes a base64 JSON signature header. Padding is optional.
func DecodeEnvelope(header string) (Envelope, error) {
	header = strings.TrimRight(strings.TrimSpace(header), "=")
	if header == "" {
		return Envelope{}, fmt.Errorf("%w: empty header", ErrMalformedSignature)
	}

	data, err := base64.RawStdEncoding.DecodeString(header)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrMalformedSignature, err)
	}

	var envelope Envelope
	if err := go_json.Unmarshal(data, &envelope); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrMalformedSignature, err)
	}
	if envelope.KeyID == "" {
		return Envelope{}, fmt.Errorf("%w: missing kid", ErrMalformedSignature)
	}
	if envelope.Signature == "" {
		return Envelope{}, fmt.Errorf("%w: missing signature", ErrMalformedSignature)
	}
	return envelope, nil
}

// FormatKey puts the PEM markers on their own lines. eBay serves the key with
// the markers and base64 body on one line.
func FormatKey(raw string) (string, error) {
	start := strings.Index(raw, keyStart)
	end := strings.Index(raw, keyEnd)
	if start < 0 || end < 0 || end < start {
		return "", ErrInvalidKeyFormat
	}

	body := strings.Join(strings.Fields(raw[start+len(keyStart):end]), "")
	if body == "" {
		return "", fmt.Errorf("%w: empty key body", ErrInvalidKeyFormat)
	}
	return keyStart + "\n" + body + "\n" + keyEnd, nil
}

func parsePublicKey(raw string) (crypto.PublicKey, error) {
	formatted, err := FormatKey(raw)
	if err != nil {
		return nil, err
	}

	block, _ := pem.Decode([]byte(formatted))
	if block == nil {
		return nil, fmt.Errorf("%w: not PEM encoded", ErrInvalidKeyFormat)
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKeyFormat, err)
	}

	switch pub.(type) {
	case *rsa.PublicKey, *ecdsa.PublicKey:
		return pub, nil
	default:
		return nil, fmt.Errorf("%w: unsupported key type %T", ErrInvalidKeyFormat, pub)
	}
}

// CanonicalMessage is the byte sequence the signature covers: the received
// JSON with insignificant whitespace removed, field order and escapes kept.
func CanonicalMessage(message []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := go_json.Compact(&buf, message); err != nil {
		return nil, fmt.Errorf("%w: message is not valid JSON: %w", ErrInvalidInput, err)
	}
	return buf.Bytes(), nil
}

// KeyResolver is satisfied by keystore.Store.
type KeyResolver interface {
	GetPublicKey(ctx context.Context, keyID string, creds oauth.AppCredentials) (storage.PublicKey, error)
}

type SignatureVerifier struct {
	keys KeyResolver
}

func NewSignatureVerifier(keys KeyResolver) *SignatureVerifier {
	return &SignatureVerifier{keys: keys}
}

// ValidateSignature reports whether header is a valid signature of message.
// A well-formed signature that does not match yields false with a nil error.
func (v *SignatureVerifier) ValidateSignature(ctx context.Context, message []byte, header string, creds oauth.AppCredentials) (bool, error) {
	envelope, err := DecodeEnvelope(header)
	if err != nil {
		return false, err
	}

	record, err := v.keys.GetPublicKey(ctx, envelope.KeyID, creds)
	if err != nil {
		return false, err
	}

	xslog.FromContext(ctx).DebugContext(ctx, "verifying signature",
		xslog.KeyID(envelope.KeyID),
		xslog.Environment(creds.Environment.String()),
	)

	return Verify(message, envelope, record.Key)
}

// Verify checks envelope against message with a PEM public key.
func Verify(message []byte, envelope Envelope, rawKey string) (bool, error) {
	pub, err := parsePublicKey(rawKey)
	if err != nil {
		return false, err
	}

	sig, err := base64.StdEncoding.DecodeString(envelope.Signature)
	if err != nil {
		return false, fmt.Errorf("%w: signature is not base64: %w", ErrMalformedSignature, err)
	}

	canonical, err := CanonicalMessage(message)
	if err != nil {
		return false, err
	}
	digest := sha1.Sum(canonical) //nolint:gosec // eBay signs notifications with SHA-1

	switch key := pub.(type) {
	case *rsa.PublicKey:
		return rsa.VerifyPKCS1v15(key, crypto.SHA1, digest[:], sig) == nil, nil
	case *ecdsa.PublicKey:
		return ecdsa.VerifyASN1(key, digest[:], sig), nil
	default:
		return false, fmt.Errorf("%w: unsupported key type %T", ErrInvalidKeyFormat, pub)
	}
}
