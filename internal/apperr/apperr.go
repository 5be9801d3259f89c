// Package apperr carries the application error taxonomy. Every error that
// crosses a service boundary is one of four kinds, and the HTTP layer maps
// each kind to a status code.
package apperr

import "errors"

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	// KindInternal is an unexpected failure (database, marshalling, bugs).
	KindInternal Kind = iota
	// KindValidation is a missing or malformed required field.
	KindValidation
	// KindNotFound means a referenced entity does not exist.
	KindNotFound
	// KindGeneration means the upstream model call failed.
	KindGeneration
)

// Error is the single error type used across services and stores.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports a missing or malformed required field.
func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// NotFound reports an absent entity.
func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Generation wraps a failed upstream model call.
func Generation(message string, err error) error {
	return &Error{Kind: KindGeneration, Message: message, Err: err}
}

// Internal wraps an unexpected failure.
func Internal(message string, err error) error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain. Errors that are not an
// *Error classify as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the boundary-safe message for an error. Internal errors
// are masked; their detail belongs in logs, not responses.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal server error"
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsGeneration(err error) bool { return KindOf(err) == KindGeneration }
