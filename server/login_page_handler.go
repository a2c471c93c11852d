package server

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-admin-console/auth"
	"github.com/jrsteele09/go-admin-console/gate"
	"github.com/jrsteele09/go-admin-console/users"
)

const msgSignedOut = "You have been signed out."

// PageData is shared by every console page
type PageData struct {
	AppName string
	Title   string
	User    *users.User
	Error   string
	Notice  string
}

func (s *Server) pageData(r *http.Request, title string) PageData {
	q := r.URL.Query()
	return PageData{
		AppName: s.appName,
		Title:   title,
		User:    s.ctrl.Snapshot().Session.User,
		Error:   q.Get("error"),
		Notice:  q.Get("notice"),
	}
}

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	PageData
	Email string // Preserve email on error
	Next  string // Where to go after a successful login
}

// LoginPageHandler displays the login page (GET /login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	loginTmpl := mustParseTemplate("login.html")

	return func(w http.ResponseWriter, r *http.Request) {
		next := r.URL.Query().Get(gate.NextParam)
		if s.ctrl.Snapshot().Authenticated() {
			redirectSuccess(w, r, gate.ReturnTo(next, RouteDashboard))
			return
		}
		s.ctrl.ResetFlow(auth.FlowLogin)

		data := LoginPageData{
			PageData: s.pageData(r, "Sign in"),
			Email:    r.URL.Query().Get("email"),
			Next:     next,
		}
		render(w, loginTmpl, http.StatusOK, data)
	}
}

// LoginSubmissionHandler processes the login form submission
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := r.FormValue("email")
		password := r.FormValue("password")
		next := r.FormValue(gate.NextParam)

		if err := s.ctrl.Login(r.Context(), email, password); err != nil {
			redirectWithError(w, r, RouteLogin, auth.UserMessage(err, "Login failed"), url.Values{
				"email":        {email},
				gate.NextParam: {next},
			})
			return
		}

		redirectSuccess(w, r, gate.ReturnTo(next, RouteDashboard))
	}
}

// LogoutHandler ends the session. Local state is cleared even if the backend
// cannot be reached, so this always lands on the login page.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.ctrl.Logout(r.Context())
		redirectWithNotice(w, r, RouteLogin, msgSignedOut)
	}
}
