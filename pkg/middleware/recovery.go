package middleware

import (
	"net/http"
	"runtime/debug"

	apperrors "marketplace/pkg/errors"
	httputil "marketplace/pkg/http"
	"marketplace/pkg/logger"
)

func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Error("Panic recovered",
						"request_id", logger.RequestIDFromContext(r.Context()),
						"error", rec,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					_ = httputil.WriteError(w, apperrors.Internal("Internal server error", nil))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
