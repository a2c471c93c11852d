package apimodel

import "github.com/jrsteele09/go-admin-console/users"

// LoginRequest is the body of POST /admin/auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the payload of a successful login.
// Both tokens must be present for the login to be usable.
type LoginResponse struct {
	User         *users.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// RefreshRequest is the body of POST /admin/auth/refresh
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// RefreshResponse is the payload of a successful refresh.
// Refresh tokens rotate: the old one is invalid once this is returned.
type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LogoutRequest is the body of POST /admin/auth/logout
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// AcceptInvitationRequest is the body of POST /admin/auth/invitations/accept
type AcceptInvitationRequest struct {
	TokenIdentifier string `json:"tokenIdentifier" validate:"required"`
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	PhoneNumber     string `json:"phoneNumber" validate:"omitempty,e164"`
}

// PasswordResetRequest is the body of POST /admin/auth/password-reset/request
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetConfirmRequest is the body of POST /admin/auth/password-reset/confirm
type PasswordResetConfirmRequest struct {
	ResetID  string `json:"resetId" validate:"required"`
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// PasswordResetIssued is what the fake backend hands to its delivery hook
// in place of sending an email.
type PasswordResetIssued struct {
	Email   string
	ResetID string
	Token   string
}
