package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/nkiryanov/backoffice/internal/handlers/render"
	"github.com/nkiryanov/backoffice/internal/handlers/userctx"
	"github.com/nkiryanov/backoffice/internal/models"
)

const bearerScheme = "Bearer "

type authenticator interface {
	// Return user the access token issued for
	Authenticate(ctx context.Context, access string) (models.PublicUser, error)
}

// Auth authenticates request by 'Authorization: Bearer <token>' header
// Authenticated user is set to request context (see userctx)
func Auth(a authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if len(header) < len(bearerScheme) || !strings.EqualFold(header[:len(bearerScheme)], bearerScheme) {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			user, err := a.Authenticate(r.Context(), strings.TrimSpace(header[len(bearerScheme):]))
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(userctx.New(r.Context(), user)))
		})
	}
}

// RequireRole allows request only if authenticated user has one of the roles
// Has to be used after Auth
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := userctx.FromContext(r.Context())
			if !ok {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !slices.Contains(roles, user.Role) {
				render.ServiceError(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
