package middleware

import (
	"mime"
	"net/http"

	apperrors "marketplace/pkg/errors"
	httputil "marketplace/pkg/http"
	"marketplace/pkg/logger"
)

// ContentTypeValidation rejects bodies that are not JSON. Paths in skip are
// exempt (the payment webhook receives the provider's raw payload).
func ContentTypeValidation(log *logger.Logger, skip ...string) func(http.Handler) http.Handler {
	exempt := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		exempt[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exempt[r.URL.Path]; ok || !requiresContentType(r) {
				next.ServeHTTP(w, r)
				return
			}

			mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if mediaType != "application/json" {
				log.Warn("Invalid Content-Type header",
					"request_id", logger.RequestIDFromContext(r.Context()),
					"content_type", mediaType,
					"path", r.URL.Path,
					"method", r.Method,
				)
				_ = httputil.WriteError(w, apperrors.New(apperrors.CodeInvalidInput,
					"Content-Type must be application/json", http.StatusUnsupportedMediaType))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Bodyless POSTs (send-verification, for one) are allowed through.
func requiresContentType(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return r.ContentLength != 0
	}
	return false
}
