// Package apperror defines the portal's error taxonomy. Services return
// *Error values; the REST layer maps kinds to HTTP status codes.
package apperror

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotAuthenticated
	KindNotAuthorized
	KindNotFound
	KindInvalidInput
	KindConflict
	KindUnavailable
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotAuthenticated(message string) *Error { return New(KindNotAuthenticated, message) }
func NotAuthorized(message string) *Error    { return New(KindNotAuthorized, message) }
func NotFound(message string) *Error         { return New(KindNotFound, message) }
func InvalidInput(message string) *Error     { return New(KindInvalidInput, message) }
func Conflict(message string) *Error         { return New(KindConflict, message) }
func Unavailable(message string) *Error      { return New(KindUnavailable, message) }
func Internal(err error) *Error              { return Wrap(KindInternal, "internal error", err) }

// KindOf returns the taxonomy kind of err, or KindInternal for
// anything that is not an *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Message returns the user-visible message for err. Internal errors
// collapse to a generic message so details never leak to clients.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != KindInternal {
		return ae.Message
	}
	return "internal server error"
}
