// Package apperr defines the error kinds services return and how they map onto HTTP status codes.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindUnauthorized
	KindNotFound
)

// Error carries a caller-facing message. Err holds the underlying cause, which is only
// ever logged.
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

func Invalid(message string) error {
	return &Error{Kind: KindInvalid, Message: message}
}

func Unauthorized(message string) error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Internal(message string, err error) error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// Status resolves err to an HTTP status and message. Anything that is not an *Error is
// treated as internal.
func Status(err error) (int, string) {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, err.Error()
	}
	switch e.Kind {
	case KindInvalid:
		return http.StatusBadRequest, e.Message
	case KindUnauthorized:
		return http.StatusUnauthorized, e.Message
	case KindNotFound:
		return http.StatusNotFound, e.Message
	default:
		return http.StatusInternalServerError, e.Error()
	}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
