package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-admin-console/apimodel"
	"github.com/jrsteele09/go-admin-console/internal/errors"
)

// Re-exported so callers of this package do not need internal/errors
var (
	ErrTransport        = errors.ErrTransport
	ErrUnauthorized     = errors.ErrUnauthorized
	ErrNoRefreshToken   = errors.ErrNoRefreshToken
	ErrRefreshFailed    = errors.ErrRefreshFailed
	ErrMalformedRefresh = errors.ErrMalformedRefresh
	ErrNotAuthenticated = errors.ErrNotAuthenticated
)

// APIError is returned for every non-2xx backend response
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string // human readable message from the backend payload, may be empty
	Body       []byte
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}

// Is lets errors.Is(err, ErrUnauthorized) match a 401 response
func (e *APIError) Is(target error) bool {
	return target == errors.ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	apiErr := &APIError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Body:       body,
	}
	var payload apimodel.ErrorResponse
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Message = payload.ErrorMessage()
	}
	return apiErr
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not an APIError
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Message returns the backend supplied message carried by err, or ""
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// IsTransport reports whether err means no response was received
func IsTransport(err error) bool {
	return errors.Is(err, errors.ErrTransport)
}
