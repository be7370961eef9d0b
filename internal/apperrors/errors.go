// Package apperrors defines the error taxonomy shared by the reservation core.
// Callers distinguish the four kinds to decide between a 404, a validation
// message, a lifecycle rejection, or a retry against fresh availability.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers and the HTTP layer.
type Kind int

const (
	// KindNotFound means a referenced entity does not exist.
	KindNotFound Kind = iota
	// KindInvalidInput means the request data is malformed or out of range.
	KindInvalidInput
	// KindInvalidState means the operation is not legal for the entity's
	// current lifecycle state (e.g. paying a Cancelled booking).
	KindInvalidState
	// KindConflict means a concurrent commitment collision; the caller should
	// re-read availability and retry.
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidInput:
		return "invalid_input"
	case KindInvalidState:
		return "invalid_state"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error carries a kind alongside the message and an optional wrapped cause.
type Error struct {
	Kind Kind
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

// NotFound returns a KindNotFound error.
func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// InvalidInput returns a KindInvalidInput error.
func InvalidInput(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidInput, Msg: fmt.Sprintf(format, args...)}
}

// InvalidState returns a KindInvalidState error.
func InvalidState(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidState, Msg: fmt.Sprintf(format, args...)}
}

// Conflict returns a KindConflict error.
func Conflict(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying error while keeping it unwrappable.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsNotFound reports whether err is a KindNotFound error.
func IsNotFound(err error) bool { return is(err, KindNotFound) }

// IsInvalidInput reports whether err is a KindInvalidInput error.
func IsInvalidInput(err error) bool { return is(err, KindInvalidInput) }

// IsInvalidState reports whether err is a KindInvalidState error.
func IsInvalidState(err error) bool { return is(err, KindInvalidState) }

// IsConflict reports whether err is a KindConflict error.
func IsConflict(err error) bool { return is(err, KindConflict) }
