package backendfake

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-admin-console/apimodel"
	"github.com/jrsteele09/go-admin-console/users"
	"github.com/rs/zerolog/log"
)

// LoginHandler authenticates email and password and issues a token pair
func (b *Backend) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apimodel.LoginRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "Email and password are required")
			return
		}

		account, err := b.accounts.GetByEmail(req.Email)
		if err != nil || !users.CheckPasswordHash(req.Password, account.PasswordHash) {
			// Don't reveal if user exists or not
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		if account.Blocked {
			writeError(w, http.StatusForbidden, "Account is blocked. Contact support.")
			return
		}

		accessToken, err := b.issuer.Issue(account.User, b.generation.Load())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Login failed")
			return
		}
		refreshToken, err := b.refresh.Create(account.User.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Login failed")
			return
		}

		user := account.User
		writeData(w, http.StatusOK, apimodel.LoginResponse{
			User:         &user,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		})
	}
}

// RefreshHandler rotates a refresh token into a new token pair
func (b *Backend) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gate := b.refreshGate(); gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}

		var req apimodel.RefreshRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.RefreshToken == "" || b.rejectRefresh.Load() {
			writeError(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}

		userID, newRefreshToken, err := b.refresh.Rotate(req.RefreshToken)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		account, err := b.accounts.GetByID(userID)
		if err != nil || account.Blocked {
			writeError(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		accessToken, err := b.issuer.Issue(account.User, b.generation.Load())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Refresh failed")
			return
		}

		resp := apimodel.RefreshResponse{AccessToken: accessToken, RefreshToken: newRefreshToken}
		if b.malformedRefresh.Load() {
			resp.RefreshToken = ""
		}
		writeData(w, http.StatusOK, resp)
	}
}

// LogoutHandler revokes the refresh token. Unknown tokens are not an error.
func (b *Backend) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if b.failLogout.Load() {
			writeError(w, http.StatusInternalServerError, "Logout is temporarily unavailable")
			return
		}
		var req apimodel.LogoutRequest
		if !decodeBody(w, r, &req) {
			return
		}
		_ = b.refresh.Revoke(req.RefreshToken)
		w.WriteHeader(http.StatusNoContent)
	}
}

// AcceptInvitationHandler turns a pending invitation into an account
func (b *Backend) AcceptInvitationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apimodel.AcceptInvitationRequest
		if !decodeBody(w, r, &req) {
			return
		}

		b.mu.Lock()
		inv, ok := b.invitations[req.TokenIdentifier]
		b.mu.Unlock()
		if !ok || subtle.ConstantTimeCompare([]byte(inv.token), []byte(req.Token)) != 1 {
			writeError(w, http.StatusBadRequest, "Invitation is invalid or has already been used")
			return
		}
		if err := users.ValidatePasswordStrength(req.Password); err != nil {
			writeError(w, http.StatusBadRequest, capitalise(err.Error()))
			return
		}

		created, err := b.AddAccount(users.User{
			Email:       inv.email,
			PhoneNumber: req.PhoneNumber,
			Role:        inv.role,
		}, req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to create account")
			return
		}

		b.mu.Lock()
		delete(b.invitations, req.TokenIdentifier)
		b.mu.Unlock()

		writeData(w, http.StatusCreated, created)
	}
}

// PasswordResetRequestHandler issues a reset link. Unknown emails get a 404.
func (b *Backend) PasswordResetRequestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apimodel.PasswordResetRequest
		if !decodeBody(w, r, &req) {
			return
		}
		account, err := b.accounts.GetByEmail(req.Email)
		if err != nil {
			writeError(w, http.StatusNotFound, "No account is registered with that email")
			return
		}

		secret, err := randomToken(24)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to issue reset link")
			return
		}
		issued := apimodel.PasswordResetIssued{
			Email:   account.User.Email,
			ResetID: newID(),
			Token:   secret,
		}

		b.mu.Lock()
		b.resets[issued.ResetID] = passwordReset{
			token:   issued.Token,
			email:   issued.Email,
			expires: nowTime().Add(resetTokenTTL),
		}
		hook := b.onReset
		b.mu.Unlock()

		if hook != nil {
			hook(issued)
		} else {
			log.Info().Str("email", issued.Email).Str("resetId", issued.ResetID).Msg("password reset issued")
		}
		writeData(w, http.StatusAccepted, map[string]string{"message": "Reset link sent"})
	}
}

// PasswordResetConfirmHandler sets a new password and ends every session of the account
func (b *Backend) PasswordResetConfirmHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apimodel.PasswordResetConfirmRequest
		if !decodeBody(w, r, &req) {
			return
		}

		b.mu.Lock()
		reset, ok := b.resets[req.ResetID]
		b.mu.Unlock()
		if !ok || nowTime().After(reset.expires) ||
			subtle.ConstantTimeCompare([]byte(reset.token), []byte(req.Token)) != 1 {
			writeError(w, http.StatusBadRequest, "Reset link is invalid or has expired")
			return
		}
		if err := users.ValidatePasswordStrength(req.Password); err != nil {
			writeError(w, http.StatusBadRequest, capitalise(err.Error()))
			return
		}

		hash, err := users.HashPassword(req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to reset password")
			return
		}
		if err := b.accounts.SetPasswordHash(reset.email, hash); err != nil {
			writeError(w, http.StatusBadRequest, "Reset link is invalid or has expired")
			return
		}
		if account, err := b.accounts.GetByEmail(reset.email); err == nil {
			_ = b.refresh.RevokeUser(account.User.ID)
		}

		b.mu.Lock()
		delete(b.resets, req.ResetID)
		b.mu.Unlock()

		w.WriteHeader(http.StatusNoContent)
	}
}

func capitalise(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
