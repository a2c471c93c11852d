package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-admin-console/users"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Issuer mints and verifies access tokens on behalf of the fake backend
type Issuer struct {
	signer Signer
	issuer string
	ttl    time.Duration
}

func NewIssuer(signer Signer, issuer string, ttl time.Duration) *Issuer {
	return &Issuer{signer: signer, issuer: issuer, ttl: ttl}
}

// Issue creates an access token for the user stamped with the given generation
func (i *Issuer) Issue(user users.User, generation int64) (string, error) {
	now := NowTimeFunc()
	claims := Claims{
		Email:      user.Email,
		Name:       user.DisplayName(),
		Role:       string(user.Role),
		Generation: generation,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			ID:        uuid.New().String(),
		},
	}
	signed, err := i.signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("[Issuer Issue] %w", err)
	}
	return signed, nil
}

// Verify checks signature, issuer and expiry and returns the claims
func (i *Issuer) Verify(rawToken string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(rawToken, claims, i.signer.GetVerificationKey,
		jwt.WithValidMethods([]string{i.signer.GetSigningMethod().Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(NowTimeFunc),
	)
	if err != nil {
		return nil, fmt.Errorf("[Issuer Verify] %w", err)
	}
	return claims, nil
}
