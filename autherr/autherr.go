// Package autherr defines the client-facing error taxonomy shared by every
// multiAuth component.
//
// An [Error] carries a [Kind] (which selects the HTTP status) and the exact
// message a client sees. Store and I/O failures are not [Error] values; they
// map to [KindInternal] and are logged rather than echoed.
package autherr

import (
	"errors"
	"net/http"
)

// Kind classifies an authentication failure.
type Kind uint8

const (
	// KindInternal covers store, network and programming failures.
	KindInternal Kind = iota
	// KindUnauthorized is returned for missing or invalid credentials.
	KindUnauthorized
	// KindNotFound is returned when a referenced record does not exist.
	KindNotFound
	// KindBadRequest is returned for malformed or conflicting input.
	KindBadRequest
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	default:
		return "internal"
	}
}

// StatusCode maps the kind to its HTTP status.
func (k Kind) StatusCode() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure with a client-visible message.
//
// Two errors match under errors.Is when kind and message are equal, so
// package-level sentinels can be compared against errors built at call sites.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

// Error returns the client-visible message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error with the same kind and message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

// New returns an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns an error of the given kind that keeps cause reachable through
// errors.Unwrap.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Unauthorized returns a KindUnauthorized error.
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }

// NotFound returns a KindNotFound error.
func NotFound(message string) *Error { return New(KindNotFound, message) }

// BadRequest returns a KindBadRequest error.
func BadRequest(message string) *Error { return New(KindBadRequest, message) }

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// StatusCode returns the HTTP status for err. A nil error maps to 200.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return KindOf(err).StatusCode()
}

// PublicMessage returns the message safe to show a client. Internal errors
// collapse to a generic text.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "Internal server error"
}
