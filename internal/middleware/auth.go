package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/nbcassistant/backend/internal/auth"
	"github.com/nbcassistant/backend/pkg/utils"
)

type contextKey struct{ name string }

var identityKey = &contextKey{"identity"}

// Auth guards privileged routes. It resolves the bearer credential
// before the handler touches any other collaborator and rejects with 401
// on failure, distinguishing a missing header from a bad token.
func Auth(gateway *auth.Gateway) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := gateway.Authorize(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				if errors.Is(err, auth.ErrMissingCredential) {
					utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
					return
				}
				utils.RespondError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom returns the authenticated identity stored by Auth.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(auth.Identity)
	return identity, ok
}
