package catalog

import "errors"

// Client-facing messages for structural payload failures.
const (
	MsgInvalidFormat = "Invalid request format"
	MsgIDProvided    = "ID must not be provided when creating or updating a book."
	MsgUnknownField  = "Unrecognized one field or more. You should provide just: title, author, publish date, isbn."
	MsgInvalidID     = "Invalid book ID"
)

// Sentinel causes carried by the structural *domain.Error values.
var (
	ErrInvalidFormat = errors.New("payload is not a JSON object of the expected shape")
	ErrIDProvided    = errors.New("payload contains an id")
	ErrUnknownField  = errors.New("payload contains an unknown field")
)
