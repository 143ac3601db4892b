package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstream is wrapped by every failed upstream call
	ErrUpstream = errors.New("odds provider unavailable")
	// ErrInvalidResponse indicates a 2xx body that did not decode as an event list
	ErrInvalidResponse = errors.New("invalid odds provider response")
	// ErrCircuitOpen indicates the HTTP client is refusing calls after repeated failures
	ErrCircuitOpen = errors.New("circuit breaker open")
	// ErrMissingSport indicates a request without a sport key
	ErrMissingSport = errors.New("missing required param: sport")
)

// Error is an upstream failure with its HTTP status and raw body.
// StatusCode is 0 when no response was received.
type Error struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	msg := "Odds API error"
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("Odds API error %d", e.StatusCode)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes ErrUpstream and the transport cause to errors.Is
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUpstream, e.Err}
	}
	return []error{ErrUpstream}
}

// NewStatusError creates an error for a non-2xx upstream response
func NewStatusError(status int, body string) *Error {
	return &Error{StatusCode: status, Body: body}
}

// NewTransportError creates an error for a request that got no usable response
func NewTransportError(err error) *Error {
	return &Error{Err: err}
}
