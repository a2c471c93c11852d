package apimodel

import "encoding/json"

// Envelope wraps every successful backend payload: { "data": ... }
type Envelope[T any] struct {
	Data T `json:"data"`
}

// RawEnvelope is used when the payload type is decided by the caller
type RawEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// ErrorResponse is the body of a non-2xx backend response.
// Backends are inconsistent about the field name, so both are read.
type ErrorResponse struct {
	Message string          `json:"message,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
}

// ErrorMessage returns the first human readable message found in the payload
func (e ErrorResponse) ErrorMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Error) == 0 {
		return ""
	}

	var asString string
	if err := json.Unmarshal(e.Error, &asString); err == nil {
		return asString
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Error, &nested); err == nil {
		return nested.Message
	}
	return ""
}
