package oauth

import (
	"github.com/garrettladley/ebaynotify/internal/env"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	tokenURLProduction = "https://api.ebay.com/identity/v1/oauth2/token"         //nolint:gosec // not credentials, just endpoint URL
	tokenURLSandbox    = "https://api.sandbox.ebay.com/identity/v1/oauth2/token" //nolint:gosec // not credentials, just endpoint URL
)

// eBay issues application tokens for the public scope in both environments.
var scopes = []string{
	"https://api.ebay.com/oauth/api_scope",
}

// AppCredentials are the application keys for one eBay environment.
type AppCredentials struct {
	ClientID     string
	ClientSecret string
	Environment  env.Environment
}

func TokenURL(environment env.Environment) string {
	if environment.IsSandbox() {
		return tokenURLSandbox
	}
	return tokenURLProduction
}

func NewConfig(creds AppCredentials) *clientcredentials.Config {
	return &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     TokenURL(creds.Environment),
		Scopes:       scopes,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
}
