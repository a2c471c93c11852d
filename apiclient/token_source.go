package apiclient

import (
	"github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/token"
	"golang.org/x/oauth2"
)

var _ oauth2.TokenSource = (*Coordinator)(nil)

// Token exposes the persisted access token as an oauth2.Token.
// Expiry is read from the token's exp claim when it is a JWT.
func (c *Coordinator) Token() (*oauth2.Token, error) {
	s := c.store.Load()
	if s.AccessToken == "" {
		return nil, errors.ErrNotAuthenticated
	}
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       token.ExpiresAt(s.AccessToken),
	}, nil
}
