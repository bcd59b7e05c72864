package invoicing

import (
	"errors"
	"fmt"
)

// ErrGateway marks every failure talking to the invoicing service.
var ErrGateway = errors.New("invoicing: gateway failure")

// GatewayError carries upstream diagnostics for a failed invoicing call.
type GatewayError struct {
	Op     string
	Status int
	Detail string
	Err    error
}

func (e *GatewayError) Error() string {
	msg := "invoicing: " + e.Op
	if e.Status > 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both ErrGateway and the underlying cause.
func (e *GatewayError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrGateway}
	}
	return []error{ErrGateway, e.Err}
}

// Diagnostic returns the upstream detail suitable for a response body.
func (e *GatewayError) Diagnostic() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

func malformed(op, detail string) error {
	return &GatewayError{Op: op, Detail: "malformed payload: " + detail}
}
