package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure. Collaborator-specific error shapes never
// cross the service boundary; they are wrapped into one of these kinds.
type Kind string

const (
	KindValidation         Kind = "VALIDATION"
	KindNotFound           Kind = "NOT_FOUND"
	KindForbidden          Kind = "FORBIDDEN"
	KindConflict           Kind = "CONFLICT"
	KindLedgerUnavailable  Kind = "LEDGER_UNAVAILABLE"
	KindStorageUnavailable Kind = "STORAGE_UNAVAILABLE"
	KindDeadlineExceeded   Kind = "DEADLINE_EXCEEDED"
	KindInternal           Kind = "INTERNAL"
)

// Error is a structured domain failure: a kind plus a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err if it is (or wraps) a domain Error,
// and KindInternal otherwise.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validationf creates a ValidationError.
func Validationf(format string, args ...interface{}) *Error {
	return newError(KindValidation, format, args...)
}

// NotFoundf creates a NotFound error.
func NotFoundf(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

// Forbiddenf creates a Forbidden error.
func Forbiddenf(format string, args ...interface{}) *Error {
	return newError(KindForbidden, format, args...)
}

// Conflictf creates a Conflict error.
func Conflictf(format string, args ...interface{}) *Error {
	return newError(KindConflict, format, args...)
}

// LedgerUnavailable wraps a failed ledger collaborator call.
func LedgerUnavailable(message string, err error) *Error {
	return &Error{Kind: KindLedgerUnavailable, Message: message, Err: err}
}

// StorageUnavailable wraps a failed content-storage collaborator call.
func StorageUnavailable(message string, err error) *Error {
	return &Error{Kind: KindStorageUnavailable, Message: message, Err: err}
}

// DeadlineExceeded wraps a collaborator call that exhausted its attempts.
func DeadlineExceeded(message string, err error) *Error {
	return &Error{Kind: KindDeadlineExceeded, Message: message, Err: err}
}

// Internal wraps an unexpected failure.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}
