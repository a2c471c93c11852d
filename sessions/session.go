package sessions

import (
	"github.com/jrsteele09/go-admin-console/users"
)

// Storage keys for the persisted session fields
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

var sessionKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUser}

// Session is the client-held authentication state.
// Empty token strings mean the field is absent.
type Session struct {
	AccessToken  string      `json:"accessToken,omitempty"`
	RefreshToken string      `json:"refreshToken,omitempty"`
	User         *users.User `json:"user,omitempty"`
}

// Tokens is the pair minted by a login or a refresh
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Authenticated reports whether both tokens are held
func (s Session) Authenticated() bool {
	return s.AccessToken != "" && s.RefreshToken != ""
}

func (s Session) Tokens() Tokens {
	return Tokens{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken}
}

// Complete reports whether both tokens of the pair are present
func (t Tokens) Complete() bool {
	return t.AccessToken != "" && t.RefreshToken != ""
}
