package middleware

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/httputil"
)

// RequireAdminToken guards reviewer routes with a shared secret presented in
// the X-Admin-Token header. Only the bcrypt hash is configured on the server
// so a leaked config does not leak the token itself.
func RequireAdminToken(tokenHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenHash == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "admin access is not configured"))
				return
			}

			token := r.Header.Get("X-Admin-Token")
			if token == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "admin token required"))
				return
			}

			if err := bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(token)); err != nil {
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "invalid admin token"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
