package oauth

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/garrettladley/ebaynotify/internal/xhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

type TokenProvider interface {
	// AppToken returns an application access token for the given credentials.
	// Returns ErrInvalidCredentials if any credential field is empty.
	// Returns an error matching ErrUpstreamAuth if the exchange fails.
	AppToken(ctx context.Context, creds AppCredentials) (*oauth2.Token, error)
}

type tokenKey struct {
	environment  string
	clientID     string
	clientSecret string
}

type AppTokenProvider struct {
	httpClient *http.Client
	tokenURL   func(AppCredentials) string
	reuse      bool

	mu      sync.Mutex
	sources map[tokenKey]oauth2.TokenSource
}

var _ TokenProvider = (*AppTokenProvider)(nil)

type Option func(*AppTokenProvider)

func WithHTTPClient(client *http.Client) Option {
	return func(p *AppTokenProvider) { p.httpClient = client }
}

// WithTokenURL overrides the environment token endpoint.
func WithTokenURL(url string) Option {
	return func(p *AppTokenProvider) {
		p.tokenURL = func(AppCredentials) string { return url }
	}
}

// WithoutReuse performs a fresh exchange on every call.
func WithoutReuse() Option {
	return func(p *AppTokenProvider) { p.reuse = false }
}

func NewAppTokenProvider(opts ...Option) *AppTokenProvider {
	p := &AppTokenProvider{
		httpClient: xhttp.NewHTTPClient(),
		tokenURL:   func(c AppCredentials) string { return TokenURL(c.Environment) },
		reuse:      true,
		sources:    make(map[tokenKey]oauth2.TokenSource),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *AppTokenProvider) AppToken(ctx context.Context, creds AppCredentials) (*oauth2.Token, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" || !creds.Environment.Valid() {
		return nil, ErrInvalidCredentials
	}

	cfg := NewConfig(creds)
	cfg.TokenURL = p.tokenURL(creds)

	var (
		token *oauth2.Token
		err   error
	)
	if p.reuse {
		token, err = p.source(ctx, cfg, creds).Token()
	} else {
		token, err = cfg.Token(context.WithValue(ctx, oauth2.HTTPClient, p.httpClient))
	}
	if err != nil {
		return nil, wrapExchangeError(creds, err)
	}
	return token, nil
}

// source returns the shared reusing token source for creds. The source outlives
// the request, so it is bound to an uncancelable copy of ctx.
func (p *AppTokenProvider) source(ctx context.Context, cfg *clientcredentials.Config, creds AppCredentials) oauth2.TokenSource {
	key := tokenKey{
		environment:  creds.Environment.String(),
		clientID:     creds.ClientID,
		clientSecret: creds.ClientSecret,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	src, ok := p.sources[key]
	if !ok {
		exchangeCtx := context.WithValue(context.WithoutCancel(ctx), oauth2.HTTPClient, p.httpClient)
		src = cfg.TokenSource(exchangeCtx)
		p.sources[key] = src
	}
	return src
}

func wrapExchangeError(creds AppCredentials, err error) error {
	authErr := &UpstreamAuthError{Environment: creds.Environment, Cause: err}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		authErr.StatusCode = retrieveErr.Response.StatusCode
	}
	return authErr
}
