package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/jrsteele09/go-admin-console/apimodel"
	"github.com/jrsteele09/go-admin-console/backendfake"
	"github.com/jrsteele09/go-admin-console/server"
	"github.com/jrsteele09/go-admin-console/users"
	"github.com/rs/zerolog/log"
)

// Demo account seeded into the fake backend
const (
	DemoEmail    = "admin@example.com"
	DemoPassword = "secret123"
)

// Demo runs the fake backend on a loopback port so the console can be tried
// without the real API
type Demo struct {
	Backend *backendfake.Backend
	URL     string

	srv  *http.Server
	done chan struct{}
}

func StartDemo() (*Demo, error) {
	b := backendfake.New()
	if err := seedDemo(b); err != nil {
		return nil, fmt.Errorf("[StartDemo] seed: %w", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("[StartDemo] listen: %w", err)
	}

	d := &Demo{
		Backend: b,
		URL:     "http://" + ln.Addr().String(),
		srv:     &http.Server{Handler: b, ReadHeaderTimeout: 5 * time.Second},
		done:    make(chan struct{}),
	}
	go func() {
		defer close(d.done)
		if err := d.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Msg("demo backend stopped")
		}
	}()

	log.Info().Str("url", d.URL).Str("email", DemoEmail).Str("password", DemoPassword).Msg("demo backend running")
	return d, nil
}

func (d *Demo) Close(ctx context.Context) error {
	err := d.srv.Shutdown(ctx)
	<-d.done
	return err
}

func seedDemo(b *backendfake.Backend) error {
	if _, err := b.AddAccount(users.User{
		Email:     DemoEmail,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      users.RoleSuperAdmin,
	}, DemoPassword); err != nil {
		return err
	}
	b.AddRestaurant("Trattoria Roma", apimodel.RestaurantActive)
	b.AddRestaurant("Sushi Kaito", apimodel.RestaurantInactive)

	identifier, secret, err := b.AddInvitation("manager@example.com", users.RoleManager)
	if err != nil {
		return err
	}
	log.Info().
		Str("link", server.RouteInvitation+"?"+url.Values{"tokenIdentifier": {identifier}, "token": {secret}}.Encode()).
		Msg("demo invitation for manager@example.com")

	// Reset links are logged in place of an email
	b.OnPasswordResetIssued(func(p apimodel.PasswordResetIssued) {
		log.Info().
			Str("email", p.Email).
			Str("link", server.RouteResetPassword+"?"+url.Values{"resetId": {p.ResetID}, "token": {p.Token}}.Encode()).
			Msg("demo password reset link")
	})
	return nil
}
