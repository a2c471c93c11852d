package auth_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-admin-console/apiclient"
	"github.com/jrsteele09/go-admin-console/apimodel"
	"github.com/jrsteele09/go-admin-console/auth"
	"github.com/jrsteele09/go-admin-console/backendfake"
	"github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/sessions"
	"github.com/jrsteele09/go-admin-console/users"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "secret123"
)

// testFixture wires a controller to the fake backend the way the app does
type testFixture struct {
	backend *backendfake.Backend
	store   *sessions.Store
	client  *apiclient.Client
	ctrl    *auth.Controller
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()
	return newFixtureWithStore(t, sessions.NewStore(sessions.NewMemoryKV()))
}

func newFixtureWithStore(t *testing.T, store *sessions.Store) *testFixture {
	t.Helper()

	backend := backendfake.New()
	_, err := backend.AddAccount(users.User{Email: adminEmail, FirstName: "Ada", Role: users.RoleSuperAdmin}, adminPassword)
	require.NoError(t, err)

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	coord := apiclient.NewCoordinator(store, nil)
	client := apiclient.New(srv.URL, coord, apiclient.WithTimeout(5*time.Second))
	ctrl := auth.NewController(client, store)
	coord.Register(ctrl)

	return &testFixture{backend: backend, store: store, client: client, ctrl: ctrl}
}

func TestController_LoginPersistsSession(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.ctrl.Login(context.Background(), adminEmail, adminPassword))

	stored := f.store.Load()
	require.True(t, stored.Authenticated())
	require.Equal(t, adminEmail, stored.User.Email)

	state := f.ctrl.Snapshot()
	require.Equal(t, auth.StatusSucceeded, state.Flow(auth.FlowLogin).Status())
	require.Empty(t, state.Flow(auth.FlowLogin).Message())
	require.Equal(t, stored.Tokens(), state.Session.Tokens())
	require.Equal(t, "Ada", state.Session.User.FirstName)
	require.Equal(t, stored.AccessToken, f.ctrl.AccessToken())
}

func TestController_LoginFailureLeavesPriorSession(t *testing.T) {
	store := sessions.NewStore(sessions.NewMemoryKV())
	require.NoError(t, store.Save(sessions.Session{AccessToken: "a", RefreshToken: "b", User: &users.User{Email: "prior@example.com"}}))
	f := newFixtureWithStore(t, store)

	err := f.ctrl.Login(context.Background(), adminEmail, "wrong")

	require.ErrorIs(t, err, apiclient.ErrUnauthorized)
	state := f.ctrl.Snapshot()
	require.Equal(t, auth.StatusFailed, state.Flow(auth.FlowLogin).Status())
	require.Equal(t, "Invalid email or password", state.Flow(auth.FlowLogin).Message())

	require.Equal(t, sessions.Tokens{AccessToken: "a", RefreshToken: "b"}, store.Load().Tokens())
	require.Equal(t, "a", f.ctrl.AccessToken())
	require.Equal(t, 0, f.backend.Calls(apimodel.RouteAuthRefresh))
}

// brokenKV fails every Set once broken is true
type brokenKV struct {
	*sessions.MemoryKV
	mu     sync.Mutex
	broken bool
}

func (b *brokenKV) breakWrites() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.broken = true
}

func (b *brokenKV) Set(key, value string) error {
	b.mu.Lock()
	broken := b.broken
	b.mu.Unlock()
	if broken {
		return fmt.Errorf("disk full")
	}
	return b.MemoryKV.Set(key, value)
}

func TestController_LoginStorageFailureKeepsPriorSession(t *testing.T) {
	kv := &brokenKV{MemoryKV: sessions.NewMemoryKV()}
	store := sessions.NewStore(kv)
	f := newFixtureWithStore(t, store)

	require.NoError(t, f.ctrl.Login(context.Background(), adminEmail, adminPassword))
	prior := store.Load()
	require.True(t, prior.Authenticated())

	kv.breakWrites()
	err := f.ctrl.Login(context.Background(), adminEmail, adminPassword)

	require.ErrorIs(t, err, errors.ErrStorage)
	require.Equal(t, auth.StatusFailed, f.ctrl.Snapshot().Flow(auth.FlowLogin).Status())

	stored := store.Load()
	require.Equal(t, prior.Tokens(), stored.Tokens())
	require.Equal(t, adminEmail, stored.User.Email)

	state := f.ctrl.Snapshot()
	require.Equal(t, stored.Tokens(), state.Session.Tokens())
	require.Equal(t, stored.User, state.Session.User)
	require.Equal(t, stored.AccessToken, f.ctrl.AccessToken())
}

func TestController_LoginWithoutUserDropsPreviousUser(t *testing.T) {
	store := sessions.NewStore(sessions.NewMemoryKV())
	require.NoError(t, store.Save(sessions.Session{AccessToken: "a", RefreshToken: "b", User: &users.User{Email: "prior@example.com"}}))
	ctrl := auth.NewController(&stubBackend{loginResp: &apimodel.LoginResponse{AccessToken: "a2", RefreshToken: "b2"}}, store)

	require.NoError(t, ctrl.Login(context.Background(), adminEmail, adminPassword))

	stored := store.Load()
	require.Equal(t, sessions.Tokens{AccessToken: "a2", RefreshToken: "b2"}, stored.Tokens())
	require.Nil(t, stored.User)
	require.Nil(t, ctrl.Snapshot().Session.User)
}

func TestController_LoginValidatesBeforeCallingBackend(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		email    string
		password string
		want     string
	}{
		{email: "", password: "x", want: "Email is required"},
		{email: "not-an-email", password: "x", want: "Email must be a valid email address"},
		{email: adminEmail, password: "", want: "Password is required"},
	}
	for _, tt := range tests {
		err := f.ctrl.Login(context.Background(), tt.email, tt.password)
		require.ErrorIs(t, err, errors.ErrInvalidInput)
		require.Equal(t, auth.Failed(tt.want), f.ctrl.Snapshot().Flow(auth.FlowLogin))
	}
	require.Equal(t, 0, f.backend.Calls(apimodel.RouteAuthLogin))
}

func TestController_LoginTransportFailureMessage(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	store := sessions.NewStore(sessions.NewMemoryKV())
	client := apiclient.New(baseURL, apiclient.NewCoordinator(store, nil), apiclient.WithTimeout(time.Second))
	ctrl := auth.NewController(client, store)

	err := ctrl.Login(context.Background(), adminEmail, adminPassword)

	require.ErrorIs(t, err, apiclient.ErrTransport)
	msg := ctrl.Snapshot().Flow(auth.FlowLogin).Message()
	require.Contains(t, msg, "Unable to reach the server")
}

func TestController_LoginRejectsIncompleteResponse(t *testing.T) {
	store := sessions.NewStore(sessions.NewMemoryKV())
	ctrl := auth.NewController(&stubBackend{
		loginResp: &apimodel.LoginResponse{AccessToken: "only-access", User: &users.User{Email: adminEmail}},
	}, store)

	err := ctrl.Login(context.Background(), adminEmail, adminPassword)

	require.ErrorIs(t, err, errors.ErrIncompleteLogin)
	require.Equal(t, auth.StatusFailed, ctrl.Snapshot().Flow(auth.FlowLogin).Status())
	require.Equal(t, sessions.Session{}, store.Load())
	require.False(t, ctrl.Snapshot().Authenticated())
}

func TestController_LogoutIsIdempotent(t *testing.T) {
	t.Run("no refresh token held", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.Save(sessions.Session{AccessToken: "a", User: &users.User{Email: adminEmail}}))

		f.ctrl.Logout(context.Background())

		require.Equal(t, 0, f.backend.Calls(apimodel.RouteAuthLogout))
		require.Equal(t, sessions.Session{}, f.store.Load())
		require.Equal(t, sessions.Session{}, f.ctrl.Snapshot().Session)
	})

	t.Run("backend logout fails", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.ctrl.Login(context.Background(), adminEmail, adminPassword))
		f.backend.FailLogout(true)

		f.ctrl.Logout(context.Background())

		require.Equal(t, 1, f.backend.Calls(apimodel.RouteAuthLogout))
		require.Equal(t, sessions.Session{}, f.store.Load())
		require.Equal(t, sessions.Session{}, f.ctrl.Snapshot().Session)
		require.Equal(t, auth.Idle(), f.ctrl.Snapshot().Flow(auth.FlowLogin))
	})
}

func TestController_LogoutRevokesRefreshToken(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.Login(context.Background(), adminEmail, adminPassword))
	refreshToken := f.store.Load().RefreshToken

	f.ctrl.Logout(context.Background())

	_, err := f.client.RefreshTokens(context.Background(), refreshToken)
	require.ErrorIs(t, err, apiclient.ErrUnauthorized)
}

func TestController_AcceptInvitation(t *testing.T) {
	f := newFixture(t)
	identifier, secret, err := f.backend.AddInvitation("new@example.com", users.RoleManager)
	require.NoError(t, err)

	t.Run("validation happens locally", func(t *testing.T) {
		err := f.ctrl.AcceptInvitation(context.Background(), auth.AcceptInvitationInput{
			TokenIdentifier: identifier, Token: secret, Password: "short",
		})
		require.ErrorIs(t, err, errors.ErrInvalidInput)
		require.Equal(t, auth.Failed("Password must be at least 8 characters long"), f.ctrl.Snapshot().Flow(auth.FlowInvitation))

		err = f.ctrl.AcceptInvitation(context.Background(), auth.AcceptInvitationInput{
			TokenIdentifier: identifier, Token: secret, Password: "Passw0rd!", PhoneNumber: "0770",
		})
		require.ErrorIs(t, err, errors.ErrInvalidInput)
		require.Contains(t, f.ctrl.Snapshot().Flow(auth.FlowInvitation).Message(), "Phone number")
		require.Equal(t, 0, f.backend.Calls(apimodel.RouteAuthAcceptInvitation))
	})

	t.Run("backend message is surfaced", func(t *testing.T) {
		err := f.ctrl.AcceptInvitation(context.Background(), auth.AcceptInvitationInput{
			TokenIdentifier: identifier, Token: secret, Password: "alllowercase1",
		})
		require.Error(t, err)
		require.Equal(t, auth.Failed("Password must contain at least one uppercase letter"), f.ctrl.Snapshot().Flow(auth.FlowInvitation))
	})

	t.Run("accepted without logging in", func(t *testing.T) {
		err := f.ctrl.AcceptInvitation(context.Background(), auth.AcceptInvitationInput{
			TokenIdentifier: identifier, Token: secret, Password: "Passw0rd!", PhoneNumber: "+447700900123",
		})
		require.NoError(t, err)

		state := f.ctrl.Snapshot()
		require.Equal(t, auth.StatusSucceeded, state.Flow(auth.FlowInvitation).Status())
		require.False(t, state.Authenticated())
		require.Equal(t, auth.StatusIdle, state.Flow(auth.FlowLogin).Status())

		require.NoError(t, f.ctrl.Login(context.Background(), "new@example.com", "Passw0rd!"))
		require.Equal(t, users.RoleManager, f.store.Load().User.Role)
	})

	t.Run("invitation is single use", func(t *testing.T) {
		err := f.ctrl.AcceptInvitation(context.Background(), auth.AcceptInvitationInput{
			TokenIdentifier: identifier, Token: secret, Password: "Passw0rd!",
		})
		require.Error(t, err)
		require.Equal(t, auth.StatusFailed, f.ctrl.Snapshot().Flow(auth.FlowInvitation).Status())
	})
}

func TestController_RequestPasswordResetDoesNotRevealUnknownEmails(t *testing.T) {
	f := newFixture(t)
	issued := make(chan apimodel.PasswordResetIssued, 2)
	f.backend.OnPasswordResetIssued(func(i apimodel.PasswordResetIssued) { issued <- i })

	require.NoError(t, f.ctrl.RequestPasswordReset(context.Background(), "nobody@example.com"))
	unknown := f.ctrl.Snapshot().Flow(auth.FlowPasswordResetRequest)

	require.NoError(t, f.ctrl.RequestPasswordReset(context.Background(), adminEmail))
	known := f.ctrl.Snapshot().Flow(auth.FlowPasswordResetRequest)

	require.Equal(t, auth.Succeeded(), unknown)
	require.Equal(t, unknown, known)
	require.Len(t, issued, 1)
	require.Equal(t, adminEmail, (<-issued).Email)
}

func TestController_ResetPassword(t *testing.T) {
	f := newFixture(t)
	links := make(chan apimodel.PasswordResetIssued, 1)
	f.backend.OnPasswordResetIssued(func(i apimodel.PasswordResetIssued) { links <- i })
	require.NoError(t, f.ctrl.RequestPasswordReset(context.Background(), adminEmail))
	issued := <-links

	err := f.ctrl.ResetPassword(context.Background(), issued.ResetID, "wrong-token", "N3wPassword")
	require.Error(t, err)
	require.Equal(t, auth.Failed("Reset link is invalid or has expired"), f.ctrl.Snapshot().Flow(auth.FlowPasswordResetConfirm))

	require.NoError(t, f.ctrl.ResetPassword(context.Background(), issued.ResetID, issued.Token, "N3wPassword"))
	state := f.ctrl.Snapshot()
	require.Equal(t, auth.StatusSucceeded, state.Flow(auth.FlowPasswordResetConfirm).Status())
	require.False(t, state.Authenticated())

	require.Error(t, f.ctrl.Login(context.Background(), adminEmail, adminPassword))
	require.NoError(t, f.ctrl.Login(context.Background(), adminEmail, "N3wPassword"))
}

func TestController_FollowsPipelineRefresh(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.Login(context.Background(), adminEmail, adminPassword))
	f.backend.ExpireAccessTokens()
	before := f.ctrl.Snapshot()

	var list []apimodel.Restaurant
	require.NoError(t, f.client.Get(context.Background(), apimodel.RouteRestaurants, &list))

	after := f.ctrl.Snapshot()
	require.NotEqual(t, before.Session.AccessToken, after.Session.AccessToken)
	require.Equal(t, f.store.Load().Tokens(), after.Session.Tokens())
	require.Equal(t, before.Session.User, after.Session.User)
	require.Equal(t, before.Flow(auth.FlowLogin), after.Flow(auth.FlowLogin))
}

func TestController_FollowsPipelineLogout(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.Login(context.Background(), adminEmail, adminPassword))
	f.backend.ExpireAccessTokens()
	f.backend.RejectRefresh(true)

	err := f.client.Get(context.Background(), apimodel.RouteRestaurants, nil)

	require.ErrorIs(t, err, apiclient.ErrRefreshFailed)
	state := f.ctrl.Snapshot()
	require.False(t, state.Authenticated())
	require.Equal(t, sessions.Session{}, state.Session)
	for _, flow := range auth.Flows() {
		require.Equal(t, auth.Idle(), state.Flow(flow), flow.String())
	}
}

func TestController_NotifyRefreshedKeepsUserAndFlows(t *testing.T) {
	store := sessions.NewStore(sessions.NewMemoryKV())
	require.NoError(t, store.Save(sessions.Session{AccessToken: "a", RefreshToken: "b", User: &users.User{Email: adminEmail}}))
	ctrl := auth.NewController(&stubBackend{resetErr: errors.ErrTransport}, store)
	require.Error(t, ctrl.RequestPasswordReset(context.Background(), adminEmail))

	ctrl.NotifyRefreshed(sessions.Tokens{AccessToken: "a2", RefreshToken: "b2"})

	state := ctrl.Snapshot()
	require.Equal(t, sessions.Tokens{AccessToken: "a2", RefreshToken: "b2"}, state.Session.Tokens())
	require.Equal(t, adminEmail, state.Session.User.Email)
	require.Equal(t, auth.StatusIdle, state.Flow(auth.FlowLogin).Status())
	require.Equal(t, auth.StatusFailed, state.Flow(auth.FlowPasswordResetRequest).Status())
}

func TestController_FlowsAreIndependent(t *testing.T) {
	stub := &stubBackend{
		resetRelease: make(chan struct{}),
		loginErr:     errors.ErrTransport,
	}
	ctrl := auth.NewController(stub, sessions.NewStore(sessions.NewMemoryKV()))

	done := make(chan error, 1)
	go func() { done <- ctrl.RequestPasswordReset(context.Background(), adminEmail) }()
	require.Eventually(t, func() bool {
		return ctrl.Snapshot().Flow(auth.FlowPasswordResetRequest).Is(auth.StatusLoading)
	}, 5*time.Second, time.Millisecond)

	require.Error(t, ctrl.Login(context.Background(), adminEmail, adminPassword))
	ctrl.ResetFlow(auth.FlowPasswordResetRequest)

	state := ctrl.Snapshot()
	require.Equal(t, auth.StatusFailed, state.Flow(auth.FlowLogin).Status())
	require.Equal(t, auth.StatusLoading, state.Flow(auth.FlowPasswordResetRequest).Status())

	close(stub.resetRelease)
	require.NoError(t, <-done)
	require.Equal(t, auth.Succeeded(), ctrl.Snapshot().Flow(auth.FlowPasswordResetRequest))

	ctrl.ResetFlow(auth.FlowPasswordResetRequest)
	require.Equal(t, auth.Idle(), ctrl.Snapshot().Flow(auth.FlowPasswordResetRequest))
}

func TestController_SubscribeDeliversLatestState(t *testing.T) {
	f := newFixture(t)
	ch, cancel := f.ctrl.Subscribe()

	initial := <-ch
	require.False(t, initial.Authenticated())

	require.NoError(t, f.ctrl.Login(context.Background(), adminEmail, adminPassword))

	latest := <-ch
	require.True(t, latest.Authenticated())
	require.Equal(t, auth.StatusSucceeded, latest.Flow(auth.FlowLogin).Status())

	cancel()
	cancel()
	for range ch {
	}
}

func TestController_HydratesFromStore(t *testing.T) {
	store := sessions.NewStore(sessions.NewMemoryKV())
	require.NoError(t, store.Save(sessions.Session{AccessToken: "a", RefreshToken: "b", User: &users.User{Email: adminEmail}}))

	ctrl := auth.NewController(&stubBackend{}, store)

	require.Equal(t, "a", ctrl.AccessToken())
	require.Equal(t, adminEmail, ctrl.Snapshot().Session.User.Email)
}

type stubBackend struct {
	mu           sync.Mutex
	loginResp    *apimodel.LoginResponse
	loginErr     error
	resetErr     error
	resetRelease chan struct{}
}

func (s *stubBackend) Login(ctx context.Context, req apimodel.LoginRequest) (*apimodel.LoginResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return s.loginResp, nil
}

func (s *stubBackend) Logout(ctx context.Context, refreshToken string) error {
	return nil
}

func (s *stubBackend) AcceptInvitation(ctx context.Context, req apimodel.AcceptInvitationRequest) error {
	return nil
}

func (s *stubBackend) RequestPasswordReset(ctx context.Context, email string) error {
	if s.resetRelease != nil {
		<-s.resetRelease
	}
	return s.resetErr
}

func (s *stubBackend) ConfirmPasswordReset(ctx context.Context, req apimodel.PasswordResetConfirmRequest) error {
	return nil
}
