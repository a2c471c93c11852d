package apiclient

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-admin-console/apimodel"
	"github.com/jrsteele09/go-admin-console/sessions"
)

// The auth endpoints never take part in the refresh protocol: a 401 from any of
// them is an answer, not an expired session.

// Login exchanges credentials for a session
func (c *Client) Login(ctx context.Context, req apimodel.LoginRequest) (*apimodel.LoginResponse, error) {
	var out apimodel.LoginResponse
	if err := c.authCall(ctx, apimodel.RouteAuthLogin, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshTokens exchanges a refresh token for a new pair. It is the
// Coordinator's ExchangeFunc and does not check the pair is complete.
func (c *Client) RefreshTokens(ctx context.Context, refreshToken string) (sessions.Tokens, error) {
	var out apimodel.RefreshResponse
	if err := c.authCall(ctx, apimodel.RouteAuthRefresh, apimodel.RefreshRequest{RefreshToken: refreshToken}, &out); err != nil {
		return sessions.Tokens{}, err
	}
	return sessions.Tokens{AccessToken: out.AccessToken, RefreshToken: out.RefreshToken}, nil
}

// Logout revokes the refresh token on the backend
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	return c.authCall(ctx, apimodel.RouteAuthLogout, apimodel.LogoutRequest{RefreshToken: refreshToken}, nil)
}

func (c *Client) AcceptInvitation(ctx context.Context, req apimodel.AcceptInvitationRequest) error {
	return c.authCall(ctx, apimodel.RouteAuthAcceptInvitation, req, nil)
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.authCall(ctx, apimodel.RouteAuthPasswordResetRequest, apimodel.PasswordResetRequest{Email: email}, nil)
}

func (c *Client) ConfirmPasswordReset(ctx context.Context, req apimodel.PasswordResetConfirmRequest) error {
	return c.authCall(ctx, apimodel.RouteAuthPasswordResetConfirm, req, nil)
}

func (c *Client) authCall(ctx context.Context, path string, in, out any) error {
	return c.call(ctx, Request{
		Method:    http.MethodPost,
		Path:      path,
		Body:      in,
		NoRefresh: true,
	}, out)
}
