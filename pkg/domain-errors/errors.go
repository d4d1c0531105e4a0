// Package dErrors provides coded domain errors. Services raise these at the
// boundary between domain logic and transports so handlers can map codes to
// HTTP statuses without string matching.
package dErrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// Admission validation codes. Each maps to exactly one precondition of
	// the admission sequence; callers are guaranteed no state was mutated
	// when one of these is returned.
	CodeInvalidPool         Code = "invalid_pool"
	CodePoolDisabled        Code = "pool_disabled"
	CodeNotAllowed          Code = "not_allowed"
	CodeLimitExceeded       Code = "limit_exceeded"
	CodeCapacityExceeded    Code = "capacity_exceeded"
	CodeInsufficientPayment Code = "insufficient_payment"

	// CodeAdmissionBusy rejects a nested or concurrent admission attempt
	// while another one holds the guard.
	CodeAdmissionBusy Code = "admission_busy"

	// CodeUntrustedOrigin marks an inbound replica message whose attested
	// sender does not match the configured peer for its claimed source.
	CodeUntrustedOrigin Code = "untrusted_origin"

	// General-purpose codes.
	CodeInvalidInput       Code = "invalid_input"
	CodeInvariantViolation Code = "invariant_violation"
	CodeBadRequest         Code = "bad_request"
	CodeUnauthorized       Code = "unauthorized"
	CodeNotFound           Code = "not_found"
	CodeInternal           Code = "internal"
)

// Error is a domain error with a stable code and a human-readable message.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is supports errors.Is comparison by code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// CodeOf extracts the domain error code, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// HasCode reports whether err carries the given domain code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}
