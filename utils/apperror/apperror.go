package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an application error so the request boundary can map it
// to an HTTP status and error code.
type Kind int

const (
	KindValidation Kind = iota // malformed or missing input
	KindPrecondition           // required derived state is absent
	KindEmptyDataset           // no gravity data loaded
	KindConflict               // duplicate unique key
	KindAuth                   // bad credentials or invalid/revoked token
	KindNotFound               // entity absent
	KindModel                  // numeric subroutine failure
	KindInternal               // anything unexpected
)

// Error is a classified application error with a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a classified error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a classified error. The cause is preserved for
// errors.Is/As but the message is what reaches the client.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func Validation(message string) *Error   { return New(KindValidation, message) }
func Precondition(message string) *Error { return New(KindPrecondition, message) }
func EmptyDataset() *Error {
	return New(KindEmptyDataset, "No gravity data loaded. Please upload data first.")
}
func Conflict(message string) *Error { return New(KindConflict, message) }
func Auth(message string) *Error     { return New(KindAuth, message) }
func NotFound(message string) *Error { return New(KindNotFound, message) }
func Model(message string, cause error) *Error {
	return Wrap(KindModel, message, cause)
}

// KindOf extracts the classification of err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
