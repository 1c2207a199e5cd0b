package game

import "fmt"

// ErrorKind classifies room operation failures so transport layers can map
// them to wire codes without string matching.
type ErrorKind string

const (
	ErrNotFound     ErrorKind = "not_found"
	ErrInvalidState ErrorKind = "invalid_state"
	ErrNotYourTurn  ErrorKind = "not_your_turn"
	ErrForbidden    ErrorKind = "forbidden"
	ErrBusy         ErrorKind = "busy"
	ErrValidation   ErrorKind = "validation"
)

// Error is a classified room operation failure.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewValidationError reports malformed client input.
func NewValidationError(format string, args ...any) *Error {
	return newError(ErrValidation, format, args...)
}

// KindOf extracts the kind from an error, defaulting to invalid_state for
// anything unclassified.
func KindOf(err error) ErrorKind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return ErrInvalidState
}
