package auth

import (
	"github.com/jrsteele09/go-admin-console/apiclient"
	"github.com/jrsteele09/go-admin-console/internal/errors"
)

const (
	msgTransport       = "Unable to reach the server. Check your connection and try again."
	msgLoginFailed     = "Login failed"
	msgIncompleteLogin = "Login failed: the server response was incomplete"
	msgStorage         = "Signed in, but the session could not be saved on this machine"
)

// UserMessage turns a failed call into the text shown next to the form.
// Backend supplied messages win; fallback covers responses without one.
func UserMessage(err error, fallback string) string {
	var inputErr *InputError
	switch {
	case errors.As(err, &inputErr):
		return inputErr.Message
	case apiclient.IsTransport(err):
		return msgTransport
	case errors.Is(err, errors.ErrIncompleteLogin):
		return msgIncompleteLogin
	}
	if msg := apiclient.Message(err); msg != "" {
		return msg
	}
	return fallback
}
