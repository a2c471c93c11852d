package server

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-admin-console/auth"
)

const msgInvitationAccepted = "Your account is ready. Sign in to continue."

type InvitationPageData struct {
	PageData
	TokenIdentifier string
	Token           string
	PhoneNumber     string
}

// InvitationGetHandler renders the form opened from an invitation email
func (s *Server) InvitationGetHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("invitation.html")

	return func(w http.ResponseWriter, r *http.Request) {
		s.ctrl.ResetFlow(auth.FlowInvitation)
		q := r.URL.Query()
		data := InvitationPageData{
			PageData:        s.pageData(r, "Accept invitation"),
			TokenIdentifier: q.Get("tokenIdentifier"),
			Token:           q.Get("token"),
			PhoneNumber:     q.Get("phoneNumber"),
		}
		render(w, tmpl, http.StatusOK, data)
	}
}

// InvitationPostHandler creates the invited account; it does not sign in
func (s *Server) InvitationPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		in := auth.AcceptInvitationInput{
			TokenIdentifier: r.FormValue("tokenIdentifier"),
			Token:           r.FormValue("token"),
			Password:        r.FormValue("password"),
			PhoneNumber:     r.FormValue("phoneNumber"),
		}
		keep := url.Values{
			"tokenIdentifier": {in.TokenIdentifier},
			"token":           {in.Token},
			"phoneNumber":     {in.PhoneNumber},
		}

		if in.Password != r.FormValue("confirm_password") {
			redirectWithError(w, r, RouteInvitation, msgPasswordMismatch, keep)
			return
		}
		if err := s.ctrl.AcceptInvitation(r.Context(), in); err != nil {
			redirectWithError(w, r, RouteInvitation, auth.UserMessage(err, "Could not accept the invitation"), keep)
			return
		}
		redirectWithNotice(w, r, RouteLogin, msgInvitationAccepted)
	}
}
