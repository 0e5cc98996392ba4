// Package auth provides authentication middleware for admin routes.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gemrelay/gemrelay/internal/storage"
	"github.com/gemrelay/gemrelay/internal/types"
)

// AdminAuth middleware protects admin routes using the stored password hash.
// If no admin password has been configured, all requests pass through
// (localhost-first design).
func AdminAuth(store storage.Storage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hash, err := store.GetAdminPasswordHash()
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				types.WriteError(w, http.StatusInternalServerError, types.ErrUpstream("server error"))
				return
			}
			// No stored hash means no password was ever configured.
			if hash == "" {
				next.ServeHTTP(w, r)
				return
			}

			// Extract Bearer token
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				types.WriteError(w, http.StatusUnauthorized, types.ErrAuthentication("authorization required"))
				return
			}
			password := strings.TrimPrefix(auth, "Bearer ")

			valid, err := storage.VerifyPassword(password, hash)
			if err != nil || !valid {
				types.WriteError(w, http.StatusUnauthorized, types.ErrAuthentication("invalid credentials"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
