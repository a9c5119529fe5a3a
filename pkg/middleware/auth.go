package middleware

import (
	"net/http"

	"marketplace/pkg/auth"
	apperrors "marketplace/pkg/errors"
	httputil "marketplace/pkg/http"
	"marketplace/pkg/logger"
	"marketplace/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// Authenticator guards individual routes with a bearer JWT.
type Authenticator struct {
	issuer *auth.Issuer
	log    *logger.Logger
}

func NewAuthenticator(issuer *auth.Issuer, log *logger.Logger) *Authenticator {
	return &Authenticator{issuer: issuer, log: log}
}

// Require rejects requests without a valid token (401) and, when roles are
// given, callers whose role is not among them (403). Claims are attached to
// the request context.
func (a *Authenticator) Require(roles ...string) func(httprouter.Handle) httprouter.Handle {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			token := auth.BearerToken(r)
			if token == "" {
				a.reject(w, r, apperrors.Unauthorized("Missing bearer token"))
				return
			}

			claims, err := a.issuer.ParseValidate(token)
			if err != nil {
				a.reject(w, r, apperrors.Unauthorized("Invalid or expired token"))
				return
			}

			if len(allowed) > 0 {
				if _, ok := allowed[claims.Role]; !ok {
					a.reject(w, r, apperrors.Forbidden("Insufficient role"))
					return
				}
			}

			next(w, r.WithContext(auth.ContextWithClaims(r.Context(), claims)), ps)
		}
	}
}

func (a *Authenticator) reject(w http.ResponseWriter, r *http.Request, err *apperrors.AppError) {
	a.log.Warn("Request rejected by authenticator",
		"request_id", logger.RequestIDFromContext(r.Context()),
		"path", r.URL.Path,
		"code", err.Code,
	)
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		a.log.Error("failed to write error response", "handler", "Authenticator", "operation", "WriteError", "error", writeErr)
	}
}

// SelfOrAdmin reports whether the authenticated caller may act on userID.
func SelfOrAdmin(r *http.Request, userID string) bool {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return false
	}
	return claims.Sub == userID || claims.Role == model.RoleAdmin
}
