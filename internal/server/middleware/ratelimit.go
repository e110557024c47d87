package middleware

import (
	"net/http"

	"github.com/garrettladley/ebaynotify/internal/storage"
	"github.com/garrettladley/ebaynotify/internal/xerrors"
	"github.com/garrettladley/ebaynotify/internal/xhttp"
	"github.com/garrettladley/ebaynotify/internal/xslog"
)

const reasonIPRateLimit = "ip_rate_limit"

type rateLimitConfig struct {
	trustedProxies int
}

type RateLimitOption func(*rateLimitConfig)

// WithTrustedProxies keys clients by X-Forwarded-For as written by the n
// nearest proxies instead of by socket address.
func WithTrustedProxies(n int) RateLimitOption {
	return func(c *rateLimitConfig) { c.trustedProxies = n }
}

// RateLimit applies per client IP limits. Limiter failures fail closed.
func RateLimit(limiter storage.RateLimiter, opts ...RateLimitOption) func(http.Handler) http.Handler {
	var cfg rateLimitConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := xhttp.GetForwardedIP(r, cfg.trustedProxies)

			result, err := limiter.Allow(ctx, ip)
			if err != nil {
				xerrors.WriteError(ctx, w, xerrors.ServiceUnavailable(
					xerrors.WithMessage("rate limit check failed"),
					xerrors.WithCause(err),
				))
				return
			}

			if !result.Allowed {
				xslog.FromContext(ctx).WarnContext(ctx, "rate limited", xslog.IP(ip))
				xerrors.WriteError(ctx, w, xerrors.TooManyRequests(
					xerrors.WithRetryAfter(result.RetryAfter),
					xerrors.WithReason(reasonIPRateLimit),
				))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
