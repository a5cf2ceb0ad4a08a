// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the HTTP boundary can translate it uniformly.
type Kind int

// Error kinds. The zero value is KindInternal so that an unclassified
// failure never leaks as a client error.
const (
	KindInternal Kind = iota
	KindMissingToken
	KindUnauthorized
	KindForbidden
	KindBadRequest
	KindConflict
	KindNotFound
)

// String returns a stable name for the kind, used in logs.
func (k Kind) String() string {
	switch k {
	case KindMissingToken:
		return "missing_token"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindBadRequest:
		return "bad_request"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidRole is returned when a role tag is outside the fixed vocabulary.
	ErrInvalidRole = errors.New("invalid role")
)

// Error is the tagged failure returned by services and guards. Message is
// always safe to show to a client; Err carries the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	// Fields holds per-field validation messages. When non-empty the error
	// is rendered as a flat field->message map.
	Fields map[string]string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && len(e.Fields) > 0 {
		msg = fmt.Sprintf("%d field(s) failed validation", len(e.Fields))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

// Unwrap returns the wrapped cause to support errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error of the given kind with a client-safe message.
func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// NewFieldErrors creates a BadRequest error carrying per-field messages.
func NewFieldErrors(fields map[string]string) *Error {
	return &Error{Kind: KindBadRequest, Fields: fields, Err: ErrValidation}
}

// KindOf reports the kind of err. Errors that are not (and do not wrap) an
// *Error are KindInternal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
