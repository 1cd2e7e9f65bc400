// Package errors provides the typed error taxonomy shared by every service.
//
// Each failure carries a machine-readable Code. The core never swallows an
// invariant violation: a failed operation returns one of these errors and
// leaves on-disk state exactly as it was before the call.
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeNotFound indicates a requested artifact does not exist.
	CodeNotFound Code = "NOT_FOUND"
	// CodeConflict indicates a uniqueness or state invariant would be violated.
	CodeConflict Code = "CONFLICT"
	// CodeValidation indicates an artifact failed schema validation before write.
	CodeValidation Code = "VALIDATION"
	// CodeIO indicates an underlying filesystem operation failed.
	CodeIO Code = "IO"
)

// Error is a typed error with a taxonomy code.
type Error struct {
	Code    Code
	Message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// NotFoundf builds a NOT_FOUND error.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflictf builds a CONFLICT error.
func Conflictf(format string, args ...any) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

// Validationf builds a VALIDATION error.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// IO wraps a filesystem failure in an IO error.
func IO(cause error, format string, args ...any) *Error {
	return &Error{Code: CodeIO, Message: fmt.Sprintf(format, args...), cause: cause}
}

// IsNotFound reports whether err is a NOT_FOUND error.
func IsNotFound(err error) bool { return hasCode(err, CodeNotFound) }

// IsConflict reports whether err is a CONFLICT error.
func IsConflict(err error) bool { return hasCode(err, CodeConflict) }

// IsValidation reports whether err is a VALIDATION error.
func IsValidation(err error) bool { return hasCode(err, CodeValidation) }

// IsIO reports whether err is an IO error.
func IsIO(err error) bool { return hasCode(err, CodeIO) }

func hasCode(err error, code Code) bool {
	var typed *Error
	if !errors.As(err, &typed) {
		return false
	}
	return typed.Code == code
}
