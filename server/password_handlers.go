package server

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-admin-console/auth"
)

const (
	msgPasswordMismatch = "Passwords do not match"
	msgPasswordReset    = "Your password has been reset. Sign in with your new password."
)

type ForgotPasswordPageData struct {
	PageData
	Email string
	Sent  bool
}

type ResetPasswordPageData struct {
	PageData
	ResetID string
	Token   string
}

// ForgotPasswordGetHandler renders the forgot-password page
func (s *Server) ForgotPasswordGetHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("forgot_password.html")

	return func(w http.ResponseWriter, r *http.Request) {
		s.ctrl.ResetFlow(auth.FlowPasswordResetRequest)
		data := ForgotPasswordPageData{
			PageData: s.pageData(r, "Forgot password"),
			Email:    r.URL.Query().Get("email"),
			Sent:     r.URL.Query().Get("sent") == "1",
		}
		render(w, tmpl, http.StatusOK, data)
	}
}

// ForgotPasswordPostHandler asks the backend to send a reset link. The page
// reads the same whether or not the address has an account.
func (s *Server) ForgotPasswordPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := r.FormValue("email")
		if err := s.ctrl.RequestPasswordReset(r.Context(), email); err != nil {
			redirectWithError(w, r, RouteForgotPassword, auth.UserMessage(err, "Could not request a password reset"),
				url.Values{"email": {email}})
			return
		}
		redirectSuccess(w, r, RouteForgotPassword+"?sent=1")
	}
}

// ResetPasswordGetHandler renders the form opened from a reset link
func (s *Server) ResetPasswordGetHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("reset_password.html")

	return func(w http.ResponseWriter, r *http.Request) {
		s.ctrl.ResetFlow(auth.FlowPasswordResetConfirm)
		q := r.URL.Query()
		data := ResetPasswordPageData{
			PageData: s.pageData(r, "Reset password"),
			ResetID:  q.Get("resetId"),
			Token:    q.Get("token"),
		}
		render(w, tmpl, http.StatusOK, data)
	}
}

// ResetPasswordPostHandler sets the new password. The user signs in afterwards.
func (s *Server) ResetPasswordPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		resetID := r.FormValue("resetId")
		token := r.FormValue("token")
		password := r.FormValue("password")
		keep := url.Values{"resetId": {resetID}, "token": {token}}

		if password != r.FormValue("confirm_password") {
			redirectWithError(w, r, RouteResetPassword, msgPasswordMismatch, keep)
			return
		}
		if err := s.ctrl.ResetPassword(r.Context(), resetID, token, password); err != nil {
			redirectWithError(w, r, RouteResetPassword, auth.UserMessage(err, "Could not reset the password"), keep)
			return
		}
		redirectWithNotice(w, r, RouteLogin, msgPasswordReset)
	}
}
