package xhttp

import (
	"net/http"
	"time"
)

const DefaultTimeout = 10 * time.Second

type ClientOption func(*http.Client)

func WithTimeout(d time.Duration) ClientOption {
	return func(c *http.Client) { c.Timeout = d }
}

func NewHTTPClient(opts ...ClientOption) *http.Client {
	c := &http.Client{Transport: NewTransport(nil), Timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
