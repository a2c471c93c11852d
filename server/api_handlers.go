package server

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-admin-console/auth"
	"github.com/jrsteele09/go-admin-console/token"
	"github.com/jrsteele09/go-admin-console/users"
)

// SessionResponse describes the held session without exposing either token
type SessionResponse struct {
	Authenticated        bool                      `json:"authenticated"`
	User                 *users.User               `json:"user,omitempty"`
	AccessTokenExpiresAt *time.Time                `json:"accessTokenExpiresAt,omitempty"`
	Flows                map[string]auth.FlowState `json:"flows"`
}

// SessionHandler reports the controller's view of the session (GET /api/session)
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := s.ctrl.Snapshot()

		resp := SessionResponse{
			Authenticated: state.Authenticated(),
			User:          state.Session.User,
			Flows:         make(map[string]auth.FlowState, len(auth.Flows())),
		}
		if exp := token.ExpiresAt(state.Session.AccessToken); !exp.IsZero() {
			resp.AccessTokenExpiresAt = &exp
		}
		for _, f := range auth.Flows() {
			resp.Flows[f.String()] = state.Flow(f)
		}

		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
