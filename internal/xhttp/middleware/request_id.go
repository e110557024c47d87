package middleware

import (
	"net/http"

	"github.com/garrettladley/ebaynotify/internal/xcontext"
	"github.com/garrettladley/ebaynotify/internal/xhttp"
	"github.com/google/uuid"
)

type requestIDConfig struct {
	idFunc      func(*http.Request) string
	trustHeader bool
}

type RequestIDOption func(*requestIDConfig)

func WithIDFunc(f func(*http.Request) string) RequestIDOption {
	return func(c *requestIDConfig) { c.idFunc = f }
}

// WithTrustedHeader reuses a well formed inbound X-Request-ID, for deployments
// behind a proxy that assigns one.
func WithTrustedHeader() RequestIDOption {
	return func(c *requestIDConfig) { c.trustHeader = true }
}

func RequestID(opts ...RequestIDOption) func(http.Handler) http.Handler {
	cfg := &requestIDConfig{
		idFunc: func(*http.Request) string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if cfg.trustHeader {
				if inbound, err := uuid.Parse(r.Header.Get(xhttp.XRequestID)); err == nil {
					id = inbound.String()
				}
			}
			if id == "" {
				id = cfg.idFunc(r)
			}
			ctx := xcontext.SetRequestID(r.Context(), id)
			xhttp.SetHeaderRequestID(w, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
