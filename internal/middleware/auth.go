package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-file-manager/internal/logger"
	"go-file-manager/internal/model"
	"go-file-manager/internal/util"
	"go-file-manager/pkg/fault"
)

type contextKey string

const claimsContextKey contextKey = "authClaims"

// TokenValidator checks an access token and returns its claims.
type TokenValidator interface {
	ValidateAccessToken(token string) (model.AuthClaims, error)
}

// RequireAuth rejects requests without a valid Bearer access token and
// stores the claims in the request context.
func RequireAuth(validator TokenValidator, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				util.WriteError(w, fault.New(fault.KindUnauthorized, "authentication required", ""))
				return
			}

			claims, err := validator.ValidateAccessToken(token)
			if err != nil {
				log.Security(IdentityFromRequest(r), "invalid_token", "request with invalid access token", map[string]any{
					"path": r.URL.Path,
				})
				util.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles allows only the listed roles past; it must run after
// RequireAuth.
func RequireRoles(log *logger.Logger, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				util.WriteError(w, fault.New(fault.KindUnauthorized, "authentication required", ""))
				return
			}

			if _, permitted := allowed[claims.Role]; !permitted {
				log.Security(IdentityFromRequest(r), "forbidden", "role lacks permission for this endpoint", map[string]any{
					"path": r.URL.Path,
					"role": claims.Role,
				})
				util.WriteError(w, fault.New(fault.KindForbidden, "insufficient permissions", ""))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext returns the authenticated claims, if any.
func ClaimsFromContext(ctx context.Context) (model.AuthClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(model.AuthClaims)
	return claims, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}

	return strings.TrimSpace(header[len(prefix):])
}
