package auth

import "encoding/json"

// Flow names one of the independently tracked auth actions
type Flow int

const (
	FlowLogin Flow = iota
	FlowInvitation
	FlowPasswordResetRequest
	FlowPasswordResetConfirm

	flowCount
)

var flowNames = [flowCount]string{
	FlowLogin:                "login",
	FlowInvitation:           "invitation",
	FlowPasswordResetRequest: "passwordResetRequest",
	FlowPasswordResetConfirm: "passwordResetConfirm",
}

func (f Flow) String() string {
	if f < 0 || f >= flowCount {
		return "unknown"
	}
	return flowNames[f]
}

// Flows lists every flow in a fixed order
func Flows() []Flow {
	return []Flow{FlowLogin, FlowInvitation, FlowPasswordResetRequest, FlowPasswordResetConfirm}
}

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FlowState is the status of one flow. Only a failed state carries a message;
// use the constructors, the zero value is Idle.
type FlowState struct {
	status  Status
	message string
}

func Idle() FlowState      { return FlowState{status: StatusIdle} }
func Loading() FlowState   { return FlowState{status: StatusLoading} }
func Succeeded() FlowState { return FlowState{status: StatusSucceeded} }

func Failed(message string) FlowState {
	return FlowState{status: StatusFailed, message: message}
}

func (f FlowState) Status() Status { return f.status }

// Message is the user facing failure message, empty unless the flow failed
func (f FlowState) Message() string { return f.message }

func (f FlowState) Is(s Status) bool { return f.status == s }

func (f FlowState) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Status  string `json:"status"`
		Message string `json:"message,omitempty"`
	}{
		Status:  f.status.String(),
		Message: f.message,
	})
}
