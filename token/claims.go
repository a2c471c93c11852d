package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by the platform's access tokens
type Claims struct {
	Email      string `json:"email,omitempty"`
	Name       string `json:"name,omitempty"`
	Role       string `json:"role,omitempty"`
	Generation int64  `json:"gen,omitempty"` // bumped by the backend to invalidate every outstanding token
	jwt.RegisteredClaims
}

// Expiry returns the exp claim, or the zero time when the token has none
func (c *Claims) Expiry() time.Time {
	if c == nil || c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
