// Package middleware provides request middleware for API-key protected
// endpoints.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ricky-lee-athena/odoo-demo/internal/apikey"
	"github.com/ricky-lee-athena/odoo-demo/internal/web"
)

type contextKey string

const userIDKey contextKey = "bridge.userID"

// UserID returns the user authenticated by APIKeyAuth, if any.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// APIKeyAuth authenticates requests by the issued key, taken from the
// Authorization bearer header or the key cookie, and stores the resolved
// user on the request context. Unauthenticated requests get a 401.
func APIKeyAuth(keys *apikey.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			secret := bearerToken(r)
			if secret == "" {
				secret, _ = web.GetAPIKeyCookie(r)
			}

			key, err := keys.ResolveKey(r.Context(), secret)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, key.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
