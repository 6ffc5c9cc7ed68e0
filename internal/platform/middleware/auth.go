package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "github.com/trackback-blockchain/plug-blockchain/pkg/domain-errors"
	"github.com/trackback-blockchain/plug-blockchain/pkg/platform/httputil"
	"github.com/trackback-blockchain/plug-blockchain/pkg/requestcontext"
)

// PrincipalValidator verifies a bearer token and returns the principal it
// carries.
type PrincipalValidator interface {
	ValidateToken(tokenString string) (requestcontext.Principal, error)
}

// RequireAuth authenticates the request from its Authorization header and
// stores the resulting principal in the request context. Handlers decide
// whether that principal is allowed to act; this middleware only
// establishes who is calling.
func RequireAuth(validator PrincipalValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			principal, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				httputil.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithCaller(ctx, principal)))
		})
	}
}
