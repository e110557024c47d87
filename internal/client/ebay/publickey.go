package ebay

import (
	"context"
	"net/http"

	"github.com/garrettladley/ebaynotify/internal/env"
)

// PublicKey is the getPublicKey response body.
type PublicKey struct {
	Algorithm string `json:"algorithm"`
	Digest    string `json:"digest"`
	Key       string `json:"key"`
}

// GetPublicKey fetches the signing key identified by keyID.
// Any status other than 200 is returned as *APIError.
func (c *Client) GetPublicKey(ctx context.Context, environment env.Environment, keyID string, accessToken string) (*PublicKey, error) {
	const route = "/public_key"

	base, err := c.baseURL(environment)
	if err != nil {
		return nil, err
	}

	var key PublicKey
	if err := c.do(ctx, http.MethodGet, joinPath(base+route, keyID), accessToken, &key); err != nil {
		return nil, err
	}
	return &key, nil
}
