package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const DefaultTimeout = 15 * time.Second

// Client sends authenticated requests to the backend API. On a 401 it refreshes
// the token pair through the Coordinator and replays the request once.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	coord      *Coordinator
	metrics    *Metrics
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds each dispatch. Values <= 0 are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func New(baseURL string, coord *Coordinator, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		coord:      coord,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Coordinator() *Coordinator {
	return c.coord
}

// Do dispatches req at most twice: once with the persisted access token and,
// after a 401 and a successful refresh, once more with the new token.
//
// A 401 with no refresh token held returns the original 401 error after the
// session is cleared. A failed refresh returns an error matching ErrRefreshFailed.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	req.Header = req.Header.Clone()
	if req.Header == nil {
		req.Header = http.Header{}
	}
	if req.Header.Get(HeaderRequestID) == "" {
		req.Header.Set(HeaderRequestID, uuid.NewString())
	}

	resp, err := c.dispatch(ctx, req, c.coord.AccessToken())
	if err == nil || req.NoRefresh || !errors.Is(err, errors.ErrUnauthorized) {
		return resp, err
	}

	accessToken, refreshErr := c.coord.Refresh(ctx, c.RefreshTokens)
	if refreshErr != nil {
		if errors.Is(refreshErr, errors.ErrNoRefreshToken) {
			return nil, err
		}
		return nil, refreshErr
	}

	log.Debug().Str("method", req.Method).Str("path", req.Path).Msg("replaying request with refreshed token")
	return c.dispatch(ctx, req, accessToken)
}

func (c *Client) dispatch(ctx context.Context, req Request, accessToken string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if accessToken != "" {
		(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}).SetAuthHeader(httpReq)
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.observeRequest(req.Method, 0, time.Since(start))
		return nil, fmt.Errorf("[Client Do] %s %s: %w: %w", req.Method, req.Path, errors.ErrTransport, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	c.metrics.observeRequest(req.Method, httpResp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("[Client Do] %s %s read body: %w: %w", req.Method, req.Path, errors.ErrTransport, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, newAPIError(req.Method, req.Path, httpResp.StatusCode, body)
	}
	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
	}, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	u := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("[Client Do] marshal %s body: %w", req.Path, err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("[Client Do] build request: %w", err)
	}
	for k, vals := range req.Header {
		for _, v := range vals {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	return httpReq, nil
}

// Get decodes the response of GET path into out
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.call(ctx, Request{Method: http.MethodGet, Path: path}, out)
}

func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.call(ctx, Request{Method: http.MethodPost, Path: path, Body: in}, out)
}

func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.call(ctx, Request{Method: http.MethodPut, Path: path, Body: in}, out)
}

func (c *Client) Patch(ctx context.Context, path string, in, out any) error {
	return c.call(ctx, Request{Method: http.MethodPatch, Path: path, Body: in}, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.call(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}

func (c *Client) call(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if err := resp.Decode(out); err != nil {
		return fmt.Errorf("[Client %s %s] decode response: %w", req.Method, req.Path, err)
	}
	return nil
}
