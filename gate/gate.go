// Package gate admits or redirects requests for protected console views based
// on whether a session is currently held.
package gate

import (
	"net/http"
	"net/url"
	"strings"
)

// NextParam carries the originally requested location to the login page
const NextParam = "next"

// TokenSource exposes the access token of the current session, "" when logged out
type TokenSource interface {
	AccessToken() string
}

type Decision struct {
	Allow      bool
	RedirectTo string // set when Allow is false
}

// Decide admits the request when an access token is held. Otherwise it sends the
// user to loginPath, preserving requested so they can be returned there.
// Token validity is not checked here; an expired token is handled by the
// request pipeline the first time it is used.
func Decide(accessToken, requested, loginPath string) Decision {
	if accessToken != "" {
		return Decision{Allow: true}
	}
	if requested == "" || requested == loginPath {
		return Decision{RedirectTo: loginPath}
	}
	return Decision{RedirectTo: loginPath + "?" + url.Values{NextParam: {requested}}.Encode()}
}

// Gate guards handlers with Decide, reading the session from source on every request
type Gate struct {
	source    TokenSource
	loginPath string
}

func New(source TokenSource, loginPath string) *Gate {
	return &Gate{source: source, loginPath: loginPath}
}

func (g *Gate) Decide(r *http.Request) Decision {
	return Decide(g.source.AccessToken(), r.URL.RequestURI(), g.loginPath)
}

// Middleware has the shape used by server.ChainMiddleware
func (g *Gate) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d := g.Decide(r)
		if d.Allow {
			next(w, r)
			return
		}
		if r.Header.Get("HX-Request") == "true" {
			w.Header().Set("HX-Redirect", d.RedirectTo)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.Redirect(w, r, d.RedirectTo, http.StatusSeeOther)
	}
}

// ReturnTo returns raw when it is a local absolute path, fallback otherwise.
// It stops a crafted next parameter from redirecting off site after login.
func ReturnTo(raw, fallback string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return fallback
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}
	return raw
}
