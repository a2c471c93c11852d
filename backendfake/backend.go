// Package backendfake is an in-process stand-in for the restaurant platform's
// admin REST API. Tests drive the console against it and `serve --demo` mounts it
// next to the console.
package backendfake

import (
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/go-admin-console/apimodel"
	"github.com/jrsteele09/go-admin-console/token"
	"github.com/jrsteele09/go-admin-console/token/refresh"
	refreshrepofake "github.com/jrsteele09/go-admin-console/token/refresh/repofake"
	"github.com/jrsteele09/go-admin-console/users"
	fakeuserrepo "github.com/jrsteele09/go-admin-console/users/repofake"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
	defaultSecret          = "backendfake-signing-secret"
	issuerName             = "backendfake"
	refreshTokenLength     = 32
	resetTokenTTL          = time.Hour
)

type invitation struct {
	token string
	email string
	role  users.RoleType
}

type passwordReset struct {
	token   string
	email   string
	expires time.Time
}

// Backend is an http.Handler serving the admin API routes in apimodel
type Backend struct {
	mux *http.ServeMux

	accounts users.AccountRepo
	issuer   *token.Issuer
	refresh  *refresh.Manager

	generation atomic.Int64

	mu          sync.Mutex
	invitations map[string]invitation    // token identifier to invitation
	resets      map[string]passwordReset // reset id to reset
	restaurants []apimodel.Restaurant
	calls       map[string]int
	authHeaders map[string][]string
	holdRefresh chan struct{}
	onReset     func(apimodel.PasswordResetIssued)

	rejectAccessTokens atomic.Bool
	rejectRefresh      atomic.Bool
	malformedRefresh   atomic.Bool
	failLogout         atomic.Bool
}

type Option func(*options)

type options struct {
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	secret          string
}

func WithAccessTokenTTL(d time.Duration) Option {
	return func(o *options) { o.accessTokenTTL = d }
}

func WithRefreshTokenTTL(d time.Duration) Option {
	return func(o *options) { o.refreshTokenTTL = d }
}

func WithSigningSecret(secret string) Option {
	return func(o *options) { o.secret = secret }
}

func New(opts ...Option) *Backend {
	o := options{
		accessTokenTTL:  defaultAccessTokenTTL,
		refreshTokenTTL: defaultRefreshTokenTTL,
		secret:          defaultSecret,
	}
	for _, opt := range opts {
		opt(&o)
	}

	b := &Backend{
		mux:         http.NewServeMux(),
		accounts:    fakeuserrepo.NewFakeAccountRepo(),
		issuer:      token.NewIssuer(token.NewHMACSigner(o.secret), issuerName, o.accessTokenTTL),
		refresh:     refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), refreshTokenLength, o.refreshTokenTTL),
		invitations: make(map[string]invitation),
		resets:      make(map[string]passwordReset),
		calls:       make(map[string]int),
		authHeaders: make(map[string][]string),
	}
	b.initRoutes()
	return b
}

func (b *Backend) initRoutes() {
	b.mux.HandleFunc("POST "+apimodel.RouteAuthLogin, b.LoginHandler())
	b.mux.HandleFunc("POST "+apimodel.RouteAuthRefresh, b.RefreshHandler())
	b.mux.HandleFunc("POST "+apimodel.RouteAuthLogout, b.LogoutHandler())
	b.mux.HandleFunc("POST "+apimodel.RouteAuthAcceptInvitation, b.AcceptInvitationHandler())
	b.mux.HandleFunc("POST "+apimodel.RouteAuthPasswordResetRequest, b.PasswordResetRequestHandler())
	b.mux.HandleFunc("POST "+apimodel.RouteAuthPasswordResetConfirm, b.PasswordResetConfirmHandler())

	b.mux.HandleFunc("GET "+apimodel.RouteRestaurants, b.requireAccessToken(b.ListRestaurantsHandler()))
	b.mux.HandleFunc("POST "+apimodel.RouteRestaurants, b.requireAccessToken(b.CreateRestaurantHandler()))
}

func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.calls[r.URL.Path]++
	b.authHeaders[r.URL.Path] = append(b.authHeaders[r.URL.Path], r.Header.Get("Authorization"))
	b.mu.Unlock()

	b.mux.ServeHTTP(w, r)
}

// Calls returns how many requests reached path
func (b *Backend) Calls(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

// Authorizations returns the Authorization header of every request to path, in
// arrival order. Requests without the header record "".
func (b *Backend) Authorizations(path string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.authHeaders[path]...)
}

// AddAccount creates or replaces an account. The password is not checked
// against the strength rules so tests and demos can use short ones.
func (b *Backend) AddAccount(user users.User, password string) (*users.User, error) {
	hash, err := users.HashPassword(password)
	if err != nil {
		return nil, err
	}
	account := &users.Account{User: user, PasswordHash: hash}
	if err := b.accounts.Upsert(account); err != nil {
		return nil, err
	}
	return &account.User, nil
}

// BlockAccount stops the account from logging in
func (b *Backend) BlockAccount(email string) error {
	account, err := b.accounts.GetByEmail(email)
	if err != nil {
		return err
	}
	account.Blocked = true
	return b.accounts.Upsert(account)
}

// AddInvitation registers a pending invitation and returns the identifier and
// secret that would be embedded in the invitation link.
func (b *Backend) AddInvitation(email string, role users.RoleType) (tokenIdentifier, secret string, err error) {
	tokenIdentifier, err = randomToken(8)
	if err != nil {
		return "", "", err
	}
	secret, err = randomToken(24)
	if err != nil {
		return "", "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.invitations[tokenIdentifier] = invitation{token: secret, email: strings.ToLower(email), role: role}
	return tokenIdentifier, secret, nil
}

func (b *Backend) AddRestaurant(name string, status apimodel.RestaurantStatus) apimodel.Restaurant {
	b.mu.Lock()
	defer b.mu.Unlock()

	r := apimodel.Restaurant{ID: newID(), Name: name, Status: status}
	b.restaurants = append(b.restaurants, r)
	return r
}

// OnPasswordResetIssued installs the hook that receives reset links in place of email delivery
func (b *Backend) OnPasswordResetIssued(fn func(apimodel.PasswordResetIssued)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onReset = fn
}

// ExpireAccessTokens invalidates every access token issued so far
func (b *Backend) ExpireAccessTokens() {
	b.generation.Add(1)
}

// HoldRefresh parks every refresh request until the returned release is called
func (b *Backend) HoldRefresh() (release func()) {
	ch := make(chan struct{})

	b.mu.Lock()
	b.holdRefresh = ch
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			if b.holdRefresh == ch {
				b.holdRefresh = nil
			}
			b.mu.Unlock()
			close(ch)
		})
	}
}

// RejectAllAccessTokens makes every bearer-protected route answer 401
func (b *Backend) RejectAllAccessTokens(reject bool) {
	b.rejectAccessTokens.Store(reject)
}

// RejectRefresh makes the refresh endpoint answer 401
func (b *Backend) RejectRefresh(reject bool) {
	b.rejectRefresh.Store(reject)
}

// MalformedRefresh makes a successful refresh omit the new refresh token
func (b *Backend) MalformedRefresh(malformed bool) {
	b.malformedRefresh.Store(malformed)
}

// FailLogout makes the logout endpoint answer 500
func (b *Backend) FailLogout(fail bool) {
	b.failLogout.Store(fail)
}

func (b *Backend) refreshGate() chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.holdRefresh
}
