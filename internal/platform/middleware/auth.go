// Package middleware carries the HTTP middleware shared across services:
// bearer credential validation and request correlation.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"fundflow/internal/authz"
	dErrors "fundflow/pkg/domainerrors"
	"fundflow/pkg/httputil"
	"fundflow/pkg/requestcontext"
)

// TokenValidator validates a bearer token and returns the principal it
// asserts. Implemented by internal/token.Service.
type TokenValidator interface {
	Validate(tokenString string) (authz.Principal, error)
}

// RequireAuth rejects requests without a valid bearer credential and threads
// the authenticated principal through the request context so handlers never
// re-parse the header themselves.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenString == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			principal, err := validator.Validate(tokenString)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithPrincipal(ctx, principal)))
		})
	}
}
