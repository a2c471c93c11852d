package backendfake

import (
	"net/http"
	"strings"
)

// requireAccessToken admits requests carrying a valid bearer of the current generation
func (b *Backend) requireAccessToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "Missing Authorization header")
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			writeError(w, http.StatusUnauthorized, "Invalid Authorization header format")
			return
		}
		if b.rejectAccessTokens.Load() {
			writeError(w, http.StatusUnauthorized, "Access token expired")
			return
		}

		claims, err := b.issuer.Verify(parts[1])
		if err != nil || claims.Generation != b.generation.Load() {
			writeError(w, http.StatusUnauthorized, "Access token expired")
			return
		}
		next(w, r)
	}
}
