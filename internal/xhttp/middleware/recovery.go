package middleware

import (
	"fmt"
	"net/http"

	"github.com/garrettladley/ebaynotify/internal/xerrors"
	"github.com/garrettladley/ebaynotify/internal/xslog"
)

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				xslog.FromContext(r.Context()).ErrorContext(
					r.Context(),
					"panic recovered",
					xslog.RequestGroup(r),
					xslog.ErrorGroupWithStack(rec),
				)
				xerrors.WriteError(r.Context(), w, xerrors.Internal(xerrors.WithCause(fmt.Errorf("panic: %v", rec))))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
