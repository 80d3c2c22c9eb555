// Package api implements the Unpack REST API using chi.
package api

import (
	"context"
	"net/http"
	"strings"
)

// DefaultOwner is the owner used when authentication is disabled and the
// request names none.
const DefaultOwner = "local"

type ownerKey struct{}

// WithOwner stores the owner id in ctx.
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey{}, ownerID)
}

// OwnerFrom returns the owner id stored by the auth middleware.
func OwnerFrom(ctx context.Context) string {
	id, _ := ctx.Value(ownerKey{}).(string)
	return id
}

// AuthMiddleware resolves the request's owner.
// If enabled is false, the owner comes from the X-Owner-ID header
// (default DefaultOwner). If enabled is true, requests must carry
// "Authorization: Bearer <token>" known to users.
func AuthMiddleware(enabled bool, users UserDirectory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				owner := r.Header.Get("X-Owner-ID")
				if owner == "" {
					owner = DefaultOwner
				}
				next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), owner)))
				return
			}
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			u, err := users.FindByToken(r.Context(), token)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), u.ID)))
		})
	}
}
