package server

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-admin-console/apimodel"
	"github.com/jrsteele09/go-admin-console/auth"
	"github.com/jrsteele09/go-admin-console/gate"
	"github.com/jrsteele09/go-admin-console/token"
	"github.com/rs/zerolog/log"
)

const msgSessionExpired = "Your session has expired. Please sign in again."

type DashboardPageData struct {
	PageData
	Restaurants []apimodel.Restaurant
	ExpiresAt   time.Time // zero when the access token is opaque
}

// DashboardHandler lists the restaurants the signed in admin can see
func (s *Server) DashboardHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("dashboard.html")

	return func(w http.ResponseWriter, r *http.Request) {
		var restaurants []apimodel.Restaurant
		err := s.api.Get(r.Context(), apimodel.RouteRestaurants, &restaurants)
		if err != nil && s.sessionEnded(w, r) {
			return
		}

		data := DashboardPageData{
			PageData:    s.pageData(r, "Dashboard"),
			Restaurants: restaurants,
			ExpiresAt:   token.ExpiresAt(s.ctrl.AccessToken()),
		}
		if err != nil {
			log.Err(err).Msg("Failed to list restaurants")
			data.Error = auth.UserMessage(err, "Could not load restaurants")
		}
		render(w, tmpl, http.StatusOK, data)
	}
}

// CreateRestaurantHandler adds a restaurant and returns to the dashboard
func (s *Server) CreateRestaurantHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		name := strings.TrimSpace(r.FormValue("name"))
		if name == "" {
			redirectWithError(w, r, RouteDashboard, "Restaurant name is required", nil)
			return
		}

		var created apimodel.Restaurant
		err := s.api.Post(r.Context(), apimodel.RouteRestaurants, apimodel.CreateRestaurantRequest{Name: name}, &created)
		if err != nil {
			if s.sessionEnded(w, r) {
				return
			}
			redirectWithError(w, r, RouteDashboard, auth.UserMessage(err, "Could not create the restaurant"), nil)
			return
		}
		redirectWithNotice(w, r, RouteDashboard, "Created "+created.Name)
	}
}

// sessionEnded sends the user back to the login page when a failed call ended
// the session (refresh rejected or no refresh token held)
func (s *Server) sessionEnded(w http.ResponseWriter, r *http.Request) bool {
	if s.ctrl.Snapshot().Authenticated() {
		return false
	}
	redirectWithError(w, r, RouteLogin, msgSessionExpired, url.Values{gate.NextParam: {RouteDashboard}})
	return true
}
