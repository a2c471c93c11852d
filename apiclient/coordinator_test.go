package apiclient_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jrsteele09/go-admin-console/apiclient"
	"github.com/jrsteele09/go-admin-console/sessions"
	"github.com/jrsteele09/go-admin-console/token"
	"github.com/jrsteele09/go-admin-console/users"
	"github.com/stretchr/testify/require"
)

func TestCoordinator_TokenSource(t *testing.T) {
	store := sessions.NewStore(sessions.NewMemoryKV())
	coord := apiclient.NewCoordinator(store, nil)

	_, err := coord.Token()
	require.ErrorIs(t, err, apiclient.ErrNotAuthenticated)

	issuer := token.NewIssuer(token.NewHMACSigner("secret"), "test", 10*time.Minute)
	access, err := issuer.Issue(users.User{ID: "u1", Email: adminEmail}, 0)
	require.NoError(t, err)
	require.NoError(t, store.Save(sessions.Session{AccessToken: access, RefreshToken: "r1"}))

	tok, err := coord.Token()
	require.NoError(t, err)
	require.Equal(t, access, tok.AccessToken)
	require.Equal(t, "r1", tok.RefreshToken)
	require.WithinDuration(t, time.Now().Add(10*time.Minute), tok.Expiry, time.Minute)
	require.True(t, tok.Valid())
}

func TestCoordinator_UnregisteredObserverIsNotNotified(t *testing.T) {
	store := sessions.NewStore(sessions.NewMemoryKV())
	coord := apiclient.NewCoordinator(store, nil)

	var kept, dropped int
	coord.Register(apiclient.ObserverFuncs{LoggedOut: func() { kept++ }})
	unregister := coord.Register(apiclient.ObserverFuncs{LoggedOut: func() { dropped++ }})
	unregister()
	unregister()

	var exchanged bool
	_, err := coord.Refresh(context.Background(), func(ctx context.Context, refreshToken string) (sessions.Tokens, error) {
		exchanged = true
		return sessions.Tokens{}, nil
	})

	require.ErrorIs(t, err, apiclient.ErrNoRefreshToken)
	require.False(t, exchanged)
	require.Equal(t, 1, kept)
	require.Equal(t, 0, dropped)
}

func TestCoordinator_RefreshSuccessPersistsAndNotifies(t *testing.T) {
	store := sessions.NewStore(sessions.NewMemoryKV())
	require.NoError(t, store.Save(sessions.Session{AccessToken: "a1", RefreshToken: "r1", User: &users.User{Email: adminEmail}}))
	coord := apiclient.NewCoordinator(store, nil)

	var notified []sessions.Tokens
	coord.Register(apiclient.ObserverFuncs{Refreshed: func(tokens sessions.Tokens) { notified = append(notified, tokens) }})

	var sent string
	access, err := coord.Refresh(context.Background(), func(ctx context.Context, refreshToken string) (sessions.Tokens, error) {
		sent = refreshToken
		return sessions.Tokens{AccessToken: "a2", RefreshToken: "r2"}, nil
	})

	require.NoError(t, err)
	require.Equal(t, "r1", sent)
	require.Equal(t, "a2", access)
	require.Equal(t, []sessions.Tokens{{AccessToken: "a2", RefreshToken: "r2"}}, notified)

	got := store.Load()
	require.Equal(t, sessions.Tokens{AccessToken: "a2", RefreshToken: "r2"}, got.Tokens())
	require.Equal(t, adminEmail, got.User.Email)
}

func TestCoordinator_RefreshMissingEitherTokenFails(t *testing.T) {
	for name, tokens := range map[string]sessions.Tokens{
		"missing access token":  {RefreshToken: "r2"},
		"missing refresh token": {AccessToken: "a2"},
	} {
		t.Run(name, func(t *testing.T) {
			store := sessions.NewStore(sessions.NewMemoryKV())
			require.NoError(t, store.Save(sessions.Session{AccessToken: "a1", RefreshToken: "r1"}))
			coord := apiclient.NewCoordinator(store, nil)
			var loggedOut int
			coord.Register(apiclient.ObserverFuncs{LoggedOut: func() { loggedOut++ }})

			_, err := coord.Refresh(context.Background(), func(context.Context, string) (sessions.Tokens, error) {
				return tokens, nil
			})

			require.ErrorIs(t, err, apiclient.ErrRefreshFailed)
			require.ErrorIs(t, err, apiclient.ErrMalformedRefresh)
			require.Equal(t, sessions.Session{}, store.Load())
			require.Equal(t, 1, loggedOut)
		})
	}
}

func TestCoordinator_RefreshErrorKeepsCause(t *testing.T) {
	store := sessions.NewStore(sessions.NewMemoryKV())
	require.NoError(t, store.Save(sessions.Session{AccessToken: "a1", RefreshToken: "r1"}))
	coord := apiclient.NewCoordinator(store, nil)

	cause := errors.New("backend down")
	_, err := coord.Refresh(context.Background(), func(context.Context, string) (sessions.Tokens, error) {
		return sessions.Tokens{}, cause
	})

	require.ErrorIs(t, err, apiclient.ErrRefreshFailed)
	require.ErrorIs(t, err, cause)
	require.False(t, store.Load().Authenticated())
}
