// Package domainerrors defines the coded error taxonomy shared by all
// workflow services. Services return these; the HTTP layer maps codes to
// status codes and renders the message in the response envelope.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code classifies a domain failure independently of transport.
type Code string

const (
	// CodeValidation marks missing or malformed required input.
	CodeValidation Code = "validation"
	// CodeUnauthorized marks a missing, invalid, or revoked principal token.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden marks a principal acting outside its role.
	CodeForbidden Code = "forbidden"
	// CodeNotFound marks a referenced record that does not exist or does not
	// belong to the caller.
	CodeNotFound Code = "not_found"
	// CodeConflict marks duplicate active requests and duplicate emails.
	CodeConflict Code = "conflict"
	// CodeInternal marks unexpected failures; the message shown to callers
	// stays generic.
	CodeInternal Code = "internal"
)

// Error carries a code plus a human-readable message suitable for direct
// display to the caller.
type Error struct {
	Code    Code
	Message string
	wrapped error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.wrapped }

// New builds a coded error with a caller-facing message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a cause while keeping the caller-facing code and message.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, wrapped: cause}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// uncoded errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to the HTTP status the envelope is written with.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
