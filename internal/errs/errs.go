// Package errs defines the error kinds from the error handling design:
// InvalidArgument, NotFound, Transient, Io, IllegalState, Exhausted.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers that need to branch on it (retry
// logic, fallback chains) without string-matching messages.
type Kind int

const (
	InvalidArgument Kind = iota
	NotFound
	Transient
	Io
	IllegalState
	Exhausted
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "InvalidArgument"
	case NotFound:
		return "NotFound"
	case Transient:
		return "Transient"
	case Io:
		return "Io"
	case IllegalState:
		return "IllegalState"
	case Exhausted:
		return "Exhausted"
	default:
		return "Unknown"
	}
}

// Error is a kinded error. Message must include the offending
// instants/fields verbatim per the error handling design.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a kinded error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a kinded error around an existing cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
