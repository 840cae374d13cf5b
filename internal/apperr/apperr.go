// Package apperr defines the failure kinds surfaced to end users.
//
// Every error carries a kind sentinel so callers can branch with errors.Is,
// and a message that is safe to show in a notification.
package apperr

import "errors"

var (
	ErrConfigMissing     = errors.New("config missing")
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrBackend           = errors.New("backend failure")
)

// Error is a classified failure with a user-facing message.
type Error struct {
	kind  error
	msg   string
	cause error
}

func (e *Error) Error() string {
	return e.msg
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

// Kind returns the sentinel this error is classified under.
func (e *Error) Kind() error {
	return e.kind
}

// New builds an error of the given kind.
func New(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Wrap builds an error of the given kind that keeps cause in the chain.
func Wrap(kind error, msg string, cause error) *Error {
	return &Error{kind: kind, msg: msg, cause: cause}
}

// KindOf returns the kind sentinel of err, or ErrBackend when err is not classified.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return ErrBackend
}

// Message returns the user-facing message of err, falling back to fallback
// for errors that were never classified.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) {
		return e.msg
	}
	return fallback
}
