package apiclient

import "github.com/jrsteele09/go-admin-console/sessions"

// Observer is told about session changes made by the request pipeline.
// Both methods are called synchronously from the refresh flight and must not block.
type Observer interface {
	// NotifyRefreshed is called after a refresh stored a new token pair
	NotifyRefreshed(tokens sessions.Tokens)
	// NotifyLoggedOut is called after the pipeline cleared the session
	NotifyLoggedOut()
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Refreshed func(tokens sessions.Tokens)
	LoggedOut func()
}

var _ Observer = ObserverFuncs{}

func (o ObserverFuncs) NotifyRefreshed(tokens sessions.Tokens) {
	if o.Refreshed != nil {
		o.Refreshed(tokens)
	}
}

func (o ObserverFuncs) NotifyLoggedOut() {
	if o.LoggedOut != nil {
		o.LoggedOut()
	}
}
