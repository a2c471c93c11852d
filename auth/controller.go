package auth

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/jrsteele09/go-admin-console/apiclient"
	"github.com/jrsteele09/go-admin-console/apimodel"
	"github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/sessions"
	"github.com/rs/zerolog/log"
)

// Backend is the part of the API client the controller drives
type Backend interface {
	Login(ctx context.Context, req apimodel.LoginRequest) (*apimodel.LoginResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	AcceptInvitation(ctx context.Context, req apimodel.AcceptInvitationRequest) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, req apimodel.PasswordResetConfirmRequest) error
}

var (
	_ Backend            = (*apiclient.Client)(nil)
	_ apiclient.Observer = (*Controller)(nil)
)

// State is a copy of the controller's session mirror and flow statuses
type State struct {
	Session sessions.Session
	flows   [flowCount]FlowState
}

func (s State) Flow(f Flow) FlowState {
	if f < 0 || f >= flowCount {
		return Idle()
	}
	return s.flows[f]
}

func (s State) Authenticated() bool {
	return s.Session.AccessToken != ""
}

// AcceptInvitationInput is what the invitation form collects
type AcceptInvitationInput struct {
	TokenIdentifier string
	Token           string
	Password        string
	PhoneNumber     string
}

// Controller runs the login, logout, invitation and password reset flows and
// keeps the in-memory mirror of the persisted session. It is registered with the
// Coordinator to follow refreshes and forced logouts made by the request pipeline.
type Controller struct {
	backend   Backend
	store     *sessions.Store
	validator *Validator

	mu      sync.RWMutex
	session sessions.Session
	flows   [flowCount]FlowState

	subsMu  sync.Mutex
	nextSub uint64
	subs    map[uint64]chan State
}

// NewController hydrates the mirror from whatever the store holds
func NewController(backend Backend, store *sessions.Store) *Controller {
	return &Controller{
		backend:   backend,
		store:     store,
		validator: NewValidator(),
		session:   store.Load(),
		subs:      make(map[uint64]chan State),
	}
}

// Snapshot returns the current state
func (c *Controller) Snapshot() State {
	c.mu.RLock()
	s := c.snapshotLocked()
	c.mu.RUnlock()

	if !s.Authenticated() && c.hydrate() {
		c.mu.RLock()
		s = c.snapshotLocked()
		c.mu.RUnlock()
	}
	return s
}

func (c *Controller) snapshotLocked() State {
	s := State{Session: c.session, flows: c.flows}
	if c.session.User != nil {
		u := *c.session.User
		s.Session.User = &u
	}
	return s
}

// AccessToken returns the mirrored access token, or ""
func (c *Controller) AccessToken() string {
	c.mu.RLock()
	tok := c.session.AccessToken
	c.mu.RUnlock()

	if tok == "" && c.hydrate() {
		c.mu.RLock()
		tok = c.session.AccessToken
		c.mu.RUnlock()
	}
	return tok
}

// hydrate fills an empty mirror from the store, which picks up a session saved
// by another process sharing the medium. It reports whether the mirror changed.
func (c *Controller) hydrate() bool {
	stored := c.store.Load()
	if stored.AccessToken == "" {
		return false
	}

	var changed bool
	c.update(func() {
		if c.session.AccessToken == "" {
			c.session = stored
			changed = true
		}
	})
	if changed {
		log.Info().Msg("picked up a session saved outside this process")
	}
	return changed
}

// Login authenticates and persists the new session. On failure the login flow
// records a user facing message and any prior session is left as it was.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	req := apimodel.LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := c.validator.Validate(req); err != nil {
		c.setFlow(FlowLogin, Failed(UserMessage(err, msgLoginFailed)))
		return err
	}

	c.setFlow(FlowLogin, Loading())
	resp, err := c.backend.Login(ctx, req)
	if err == nil && (resp.AccessToken == "" || resp.RefreshToken == "") {
		err = errors.ErrIncompleteLogin
	}
	if err != nil {
		c.setFlow(FlowLogin, Failed(UserMessage(err, msgLoginFailed)))
		return errors.Wrapf(err, "[Controller Login]")
	}

	session := sessions.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         resp.User,
	}
	// Replace, not Save: another account's user record must not survive a login without one
	if err := c.store.Replace(session); err != nil {
		stored := c.store.Load()
		c.update(func() {
			c.session = stored
			c.flows[FlowLogin] = Failed(msgStorage)
		})
		return errors.Wrapf(err, "[Controller Login]")
	}

	c.update(func() {
		c.session = session
		c.flows[FlowLogin] = Succeeded()
	})
	log.Info().Str("email", req.Email).Msg("logged in")
	return nil
}

// Logout ends the session. The backend is told when a refresh token is held, but
// local state is cleared whatever the outcome. It never fails.
func (c *Controller) Logout(ctx context.Context) {
	refreshToken := c.store.Load().RefreshToken
	if refreshToken == "" {
		c.mu.RLock()
		refreshToken = c.session.RefreshToken
		c.mu.RUnlock()
	}

	if refreshToken != "" {
		if err := c.backend.Logout(ctx, refreshToken); err != nil {
			log.Warn().Err(err).Msg("backend logout failed, clearing the local session anyway")
		}
	}

	if err := c.store.Clear(); err != nil {
		log.Error().Err(err).Msg("failed to clear the stored session")
	}
	c.update(func() {
		c.session = sessions.Session{}
		c.flows = [flowCount]FlowState{}
	})
}

// AcceptInvitation creates the invited account. It does not log in.
func (c *Controller) AcceptInvitation(ctx context.Context, in AcceptInvitationInput) error {
	req := apimodel.AcceptInvitationRequest{
		TokenIdentifier: strings.TrimSpace(in.TokenIdentifier),
		Token:           strings.TrimSpace(in.Token),
		Password:        in.Password,
		PhoneNumber:     strings.TrimSpace(in.PhoneNumber),
	}
	return c.runFlow(FlowInvitation, req, "Could not accept the invitation", func() error {
		return c.backend.AcceptInvitation(ctx, req)
	})
}

// RequestPasswordReset asks for a reset link. An unknown email is reported as
// success so the outcome does not reveal which addresses have accounts.
func (c *Controller) RequestPasswordReset(ctx context.Context, email string) error {
	req := apimodel.PasswordResetRequest{Email: strings.TrimSpace(email)}
	return c.runFlow(FlowPasswordResetRequest, req, "Could not request a password reset", func() error {
		err := c.backend.RequestPasswordReset(ctx, req.Email)
		if apiclient.StatusCode(err) == http.StatusNotFound {
			return nil
		}
		return err
	})
}

// ResetPassword sets a new password from a reset link. It does not log in.
func (c *Controller) ResetPassword(ctx context.Context, resetID, token, newPassword string) error {
	req := apimodel.PasswordResetConfirmRequest{
		ResetID:  strings.TrimSpace(resetID),
		Token:    strings.TrimSpace(token),
		Password: newPassword,
	}
	return c.runFlow(FlowPasswordResetConfirm, req, "Could not reset the password", func() error {
		return c.backend.ConfirmPasswordReset(ctx, req)
	})
}

func (c *Controller) runFlow(flow Flow, req any, fallback string, call func() error) error {
	if err := c.validator.Validate(req); err != nil {
		c.setFlow(flow, Failed(UserMessage(err, fallback)))
		return err
	}

	c.setFlow(flow, Loading())
	if err := call(); err != nil {
		c.setFlow(flow, Failed(UserMessage(err, fallback)))
		return errors.Wrapf(err, "[Controller %s]", flow)
	}
	c.setFlow(flow, Succeeded())
	return nil
}

// ResetFlow puts a finished flow back to idle. A loading flow is left alone.
func (c *Controller) ResetFlow(flow Flow) {
	if flow < 0 || flow >= flowCount {
		return
	}
	c.update(func() {
		if !c.flows[flow].Is(StatusLoading) {
			c.flows[flow] = Idle()
		}
	})
}

// NotifyRefreshed mirrors a token pair already persisted by the Coordinator
func (c *Controller) NotifyRefreshed(tokens sessions.Tokens) {
	c.update(func() {
		c.session.AccessToken = tokens.AccessToken
		c.session.RefreshToken = tokens.RefreshToken
	})
}

// NotifyLoggedOut mirrors a session the Coordinator already cleared
func (c *Controller) NotifyLoggedOut() {
	c.update(func() {
		c.session = sessions.Session{}
		c.flows = [flowCount]FlowState{}
	})
	log.Info().Msg("session ended by the request pipeline")
}

func (c *Controller) setFlow(flow Flow, state FlowState) {
	c.update(func() { c.flows[flow] = state })
}

// update applies fn under the write lock and publishes the resulting state.
// Publishing under the lock keeps subscribers from seeing states out of order.
func (c *Controller) update(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fn()
	c.publish(c.snapshotLocked())
}

// Subscribe returns a channel that always holds the most recent state. Slow
// readers miss intermediate states, never the latest one. cancel closes the channel.
func (c *Controller) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	c.mu.RLock()
	c.subsMu.Lock()
	ch <- c.snapshotLocked()
	c.nextSub++
	id := c.nextSub
	c.subs[id] = ch
	c.subsMu.Unlock()
	c.mu.RUnlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.subsMu.Lock()
			delete(c.subs, id)
			c.subsMu.Unlock()
			close(ch)
		})
	}
}

func (c *Controller) publish(s State) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()

	for _, ch := range c.subs {
		// Drop the stale value, if any, so the send never blocks
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}
