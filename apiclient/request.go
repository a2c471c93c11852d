package apiclient

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-admin-console/apimodel"
)

const (
	HeaderRequestID = "X-Request-ID"

	maxResponseBytes = 10 << 20
)

// Request describes one backend call relative to the configured base URL
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any // marshalled to JSON when non-nil
	Header http.Header

	// NoRefresh returns a 401 to the caller as is instead of refreshing.
	// Used by the auth endpoints themselves.
	NoRefresh bool
}

// Response is a fully read 2xx backend response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the payload into out. A {"data": ...} envelope is unwrapped
// when present, otherwise the whole body is decoded.
func (r *Response) Decode(out any) error {
	if out == nil || len(r.Body) == 0 {
		return nil
	}
	var env apimodel.RawEnvelope
	if err := json.Unmarshal(r.Body, &env); err == nil && len(env.Data) > 0 && string(env.Data) != "null" {
		return json.Unmarshal(env.Data, out)
	}
	return json.Unmarshal(r.Body, out)
}
