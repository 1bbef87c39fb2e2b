package store

import (
	"errors"
	"fmt"
)

// ErrorKind classifies expected failure modes of the data access layer so
// handlers can branch uniformly instead of inspecting driver errors.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindValidation
)

// Error carries an ErrorKind plus a user-presentable message. Data access
// functions never panic and never leak raw driver errors to callers.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Message returns the user-presentable part of the error.
func (e *Error) Message() string { return e.Msg }

func newError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// NotFoundError builds a KindNotFound error.
func NotFoundError(msg string) *Error { return newError(KindNotFound, msg, nil) }

// ForbiddenError builds a KindForbidden error.
func ForbiddenError(msg string) *Error { return newError(KindForbidden, msg, nil) }

// ConflictError builds a KindConflict error.
func ConflictError(msg string) *Error { return newError(KindConflict, msg, nil) }

// ValidationError builds a KindValidation error.
func ValidationError(msg string) *Error { return newError(KindValidation, msg, nil) }

// InternalError wraps an unexpected failure.
func InternalError(msg string, err error) *Error { return newError(KindInternal, msg, err) }

// KindOf extracts the ErrorKind from err, defaulting to KindInternal.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsForbidden reports whether err is an authorization failure.
func IsForbidden(err error) bool { return KindOf(err) == KindForbidden }
