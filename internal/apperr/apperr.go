// Package apperr defines the error taxonomy shared by the taskhub services.
//
// Every rule violation is returned as an *Error carrying one of the Kind
// sentinels below and a human-readable message that names the violated rule.
// Callers classify with errors.Is (or KindOf) and may render Error() directly.
package apperr

import (
	"errors"
	"fmt"
)

// Kind sentinels.
var (
	ErrNotFound     = errors.New("not_found")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("validation_error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a classified failure with a user-facing message.
type Error struct {
	Kind error
	Msg  string
	Err  error // optional cause, never rendered
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// NotFound reports an absent entity.
func NotFound(format string, args ...any) error { return newf(ErrNotFound, format, args...) }

// Forbidden reports an authenticated caller acting outside its rights.
func Forbidden(format string, args ...any) error { return newf(ErrForbidden, format, args...) }

// Validation reports malformed input, an invalid transition or a cross-entity mismatch.
func Validation(format string, args ...any) error { return newf(ErrValidation, format, args...) }

// Conflict reports a duplicate or a concurrent modification.
func Conflict(format string, args ...any) error { return newf(ErrConflict, format, args...) }

// Unauthorized reports a missing or invalid principal.
func Unauthorized(format string, args ...any) error { return newf(ErrUnauthorized, format, args...) }

// Wrap classifies cause under kind with the given message.
func Wrap(kind, cause error, msg string) error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// KindOf returns the Kind sentinel carried by err, or nil for unclassified
// errors (which callers must treat as internal failures).
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}

// Message returns the user-facing message of a classified error.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return ""
}
