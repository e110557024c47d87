package ebay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/garrettladley/ebaynotify/internal/env"
	"github.com/garrettladley/ebaynotify/internal/xhttp"
	go_json "github.com/goccy/go-json"
)

const (
	notificationAPIProduction = "https://api.ebay.com/commerce/notification/v1"
	notificationAPISandbox    = "https://api.sandbox.ebay.com/commerce/notification/v1"
)

// Client talks to the eBay Notification API. Requests are authorized with an
// application token supplied per call.
type Client struct {
	baseURLs   map[env.Environment]string
	httpClient *http.Client
}

func New(opts ...Option) *Client {
	cfg := &clientConfig{
		baseURLs: map[env.Environment]string{
			env.Production: notificationAPIProduction,
			env.Sandbox:    notificationAPISandbox,
		},
		timeout: xhttp.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = xhttp.NewHTTPClient(xhttp.WithTimeout(cfg.timeout))
	}

	return &Client{
		baseURLs:   cfg.baseURLs,
		httpClient: httpClient,
	}
}

type clientConfig struct {
	baseURLs   map[env.Environment]string
	httpClient *http.Client
	timeout    time.Duration
}

type Option func(*clientConfig)

// WithBaseURL overrides the Notification API root for one environment.
func WithBaseURL(environment env.Environment, baseURL string) Option {
	return func(cfg *clientConfig) { cfg.baseURLs[environment] = strings.TrimRight(baseURL, "/") }
}

func WithHTTPClient(client *http.Client) Option {
	return func(cfg *clientConfig) { cfg.httpClient = client }
}

func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) { cfg.timeout = d }
}

func (c *Client) baseURL(environment env.Environment) (string, error) {
	u, ok := c.baseURLs[environment]
	if !ok {
		return "", fmt.Errorf("no notification api endpoint for environment %q", environment)
	}
	return u, nil
}

func (c *Client) do(ctx context.Context, method string, u string, accessToken string, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	// eBay accepts the lowercase scheme; keep it byte-for-byte
	req.Header.Set(xhttp.Authorization, "bearer "+accessToken)
	req.Header.Set(xhttp.ContentType, xhttp.ApplicationJSON)
	req.Header.Set("Accept", xhttp.ApplicationJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return parseAPIError(resp, u)
	}

	if result != nil {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
		if err := go_json.NewDecoder(bytes.NewReader(body)).Decode(result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

func joinPath(base string, elem string) string {
	return base + "/" + url.PathEscape(elem)
}
