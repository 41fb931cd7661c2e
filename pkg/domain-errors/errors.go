// Package domainerrors provides code-carrying errors shared across the
// portal. Services attach a stable machine-readable code when creating or
// wrapping errors; transport layers map codes to HTTP statuses without
// inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a stable error category.
type Code string

const (
	// CodeInvalidInput marks structurally missing or malformed caller input,
	// e.g. a required normalized fact absent from an assessment request.
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest marks transport-level request problems (bad JSON, bad params).
	CodeBadRequest Code = "bad_request"
	// CodeUnauthorized marks missing or invalid authentication.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden marks authenticated callers lacking the required role.
	CodeForbidden Code = "forbidden"
	// CodeNotFound marks missing records.
	CodeNotFound Code = "not_found"
	// CodeConflict marks state-transition violations (e.g. re-submitting an
	// already reviewed registration).
	CodeConflict Code = "conflict"
	// CodeConfiguration marks deploy-time misconfiguration, e.g. a scoring
	// profile referencing an unknown factor. Surfaced at startup validation.
	CodeConfiguration Code = "configuration"
	// CodeStoreFailure marks persistence failures. Kept distinct from
	// CodeInternal so callers can tell "assessment computed but not recorded"
	// apart from "assessment could not be computed".
	CodeStoreFailure Code = "store_failure"
	// CodeInternal marks everything else; details are never exposed to clients.
	CodeInternal Code = "internal_error"
)

// Error is the concrete error type carrying a code and message. Wrapped causes
// are preserved for errors.Is/As chains.
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

// Is lets errors.Is treat two domain errors with the same code and message as
// equal regardless of identity.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code && e.Message == other.Message
}

// New creates a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a code and message while keeping it unwrappable.
// Wrapping nil returns nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var coded *Error
	for errors.As(err, &coded) {
		if coded.Code == code {
			return true
		}
		err = coded.cause
		coded = nil
	}
	return false
}

// CodeOf returns the outermost code in the chain, or CodeInternal when the
// error carries none.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeInternal
}
