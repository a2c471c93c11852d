package token

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Inspect reads the claims of an access token WITHOUT verifying its signature.
// The console never trusts these claims for access decisions; they are only used
// to display identity and expiry. Opaque (non-JWT) tokens return an error.
func Inspect(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, fmt.Errorf("[token Inspect] empty token")
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return nil, fmt.Errorf("[token Inspect] %w", err)
	}
	return claims, nil
}

// ExpiresAt returns the expiry of an access token, or the zero time if it cannot be read
func ExpiresAt(rawToken string) time.Time {
	claims, err := Inspect(rawToken)
	if err != nil {
		return time.Time{}
	}
	return claims.Expiry()
}
