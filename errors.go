package figcms

import (
	"database/sql"
	"errors"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = sql.ErrNoRows

// ErrInvalidCredentials is deliberately generic: a missing account, a
// deactivated account, and a wrong password all produce the same error.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken covers expired, consumed, and unknown tokens, both for
// sessions and for password resets.
var ErrInvalidToken = errors.New("invalid token")

// ValidationError reports missing or malformed input. When Field is set
// and Reason is not, the message names the first missing field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return e.Field + " is required"
}

func missingField(field string) error {
	return &ValidationError{Field: field}
}

func invalidInput(reason string) error {
	return &ValidationError{Reason: reason}
}

// ConflictError reports a uniqueness violation (slug or admin email).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// UpstreamError wraps a failure in an external collaborator such as mail
// delivery. State changes made before the failure are kept.
type UpstreamError struct {
	Msg string
	Err error
}

func (e *UpstreamError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Err.Error()
}

func (e *UpstreamError) Unwrap() error { return e.Err }
