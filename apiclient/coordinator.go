package apiclient

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/sessions"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const refreshFlightKey = "refresh"

// ExchangeFunc trades a refresh token for a new token pair
type ExchangeFunc func(ctx context.Context, refreshToken string) (sessions.Tokens, error)

type registration struct {
	id       uint64
	observer Observer
}

// Coordinator owns the session store on behalf of the request pipeline and
// guarantees at most one token refresh is in flight at any time.
type Coordinator struct {
	store   *sessions.Store
	metrics *Metrics

	group   singleflight.Group
	waiting atomic.Int64

	mu        sync.RWMutex
	nextID    uint64
	observers []registration
}

func NewCoordinator(store *sessions.Store, metrics *Metrics) *Coordinator {
	return &Coordinator{
		store:   store,
		metrics: metrics,
	}
}

func (c *Coordinator) Store() *sessions.Store {
	return c.store
}

// AccessToken returns the access token currently persisted, or ""
func (c *Coordinator) AccessToken() string {
	return c.store.Load().AccessToken
}

// Register adds an observer and returns the function that removes it
func (c *Coordinator) Register(o Observer) (unregister func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	c.observers = append(c.observers, registration{id: id, observer: o})

	var once sync.Once
	return func() {
		once.Do(func() { c.unregister(id) })
	}
}

func (c *Coordinator) unregister(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, r := range c.observers {
		if r.id == id {
			c.observers = append(c.observers[:i], c.observers[i+1:]...)
			return
		}
	}
}

// Waiting returns how many callers are currently attached to a refresh flight
func (c *Coordinator) Waiting() int {
	return int(c.waiting.Load())
}

// Refresh obtains a new access token. Concurrent callers share a single flight:
// only the first one runs exchange, the rest wait for its outcome.
//
// The flight runs detached from the caller's cancellation so a caller giving up
// does not fail the refresh for everyone else. A caller whose ctx ends stops
// waiting and gets ctx.Err().
func (c *Coordinator) Refresh(ctx context.Context, exchange ExchangeFunc) (string, error) {
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(refreshFlightKey, func() (any, error) {
		return c.runRefresh(flightCtx, exchange)
	})

	// Counted once attached to the flight
	c.metrics.setWaiters(c.waiting.Add(1))
	defer func() { c.metrics.setWaiters(c.waiting.Add(-1)) }()

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Coordinator) runRefresh(ctx context.Context, exchange ExchangeFunc) (string, error) {
	refreshToken := c.store.Load().RefreshToken
	if refreshToken == "" {
		c.metrics.refresh(refreshNoToken)
		log.Info().Msg("access token rejected and no refresh token held, ending session")
		c.expire()
		return "", errors.ErrNoRefreshToken
	}

	tokens, err := exchange(ctx, refreshToken)
	if err == nil && !tokens.Complete() {
		err = errors.ErrMalformedRefresh
	}
	if err != nil {
		c.metrics.refresh(refreshFailure)
		log.Warn().Err(err).Msg("token refresh failed, ending session")
		c.expire()
		return "", fmt.Errorf("[Coordinator Refresh] %w: %w", errors.ErrRefreshFailed, err)
	}

	if err := c.store.SaveTokens(tokens); err != nil {
		log.Error().Err(err).Msg("failed to persist refreshed tokens")
	}
	c.metrics.refresh(refreshSuccess)
	log.Debug().Msg("token pair refreshed")

	for _, o := range c.snapshot() {
		o.NotifyRefreshed(tokens)
	}
	return tokens.AccessToken, nil
}

// expire clears the persisted session and tells every observer
func (c *Coordinator) expire() {
	if err := c.store.Clear(); err != nil {
		log.Error().Err(err).Msg("failed to clear session")
	}
	c.metrics.forcedLogout()
	for _, o := range c.snapshot() {
		o.NotifyLoggedOut()
	}
}

func (c *Coordinator) snapshot() []Observer {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Observer, 0, len(c.observers))
	for _, r := range c.observers {
		out = append(out, r.observer)
	}
	return out
}
