package middleware

import (
	"log/slog"
	"net/http"

	"github.com/garrettladley/ebaynotify/internal/xcontext"
	"github.com/garrettladley/ebaynotify/internal/xslog"
)

// Logger injects a request scoped logger carrying the request id, method and
// path. Must run AFTER RequestID middleware.
func Logger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attrs := []any{xslog.RequestMethod(r), xslog.RequestPath(r)}
			if id, ok := xcontext.GetRequestID(r.Context()); ok {
				attrs = append(attrs, xslog.RequestID(id))
			}
			ctx := xslog.WithLogger(r.Context(), base.With(attrs...))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
