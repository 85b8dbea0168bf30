// Package errors provides the coded domain errors shared by the catalog, ledger and API layers.
//
// Usage:
//
//	// In the ledger - return typed errors
//	if l.IsBorrowed(book.ID) {
//	    return domain.BorrowRecord{}, errors.AlreadyBorrowedf("book %d is already borrowed", book.ID)
//	}
//
//	// In callers - check with errors.Is
//	if errors.Is(err, errors.ErrAlreadyBorrowed) {
//	    // disable the borrow control
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
	New    = errors.New
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound               Code = "NOT_FOUND"
	CodeValidation             Code = "VALIDATION"
	CodeAlreadyBorrowed        Code = "ALREADY_BORROWED"
	CodePersistenceUnavailable Code = "PERSISTENCE_UNAVAILABLE"
	CodeNoSelection            Code = "NO_SELECTION"
	CodeRateLimited            Code = "RATE_LIMITED"
	CodeInternal               Code = "INTERNAL"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	case CodeAlreadyBorrowed, CodeNoSelection:
		return http.StatusConflict
	case CodePersistenceUnavailable:
		return http.StatusServiceUnavailable
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a copy of the error carrying details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// WithCause returns a copy of the error wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, cause: err}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound               = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation             = &Error{Code: CodeValidation, Message: "validation error"}
	ErrAlreadyBorrowed        = &Error{Code: CodeAlreadyBorrowed, Message: "already borrowed"}
	ErrPersistenceUnavailable = &Error{Code: CodePersistenceUnavailable, Message: "persisted state unavailable"}
	ErrNoSelection            = &Error{Code: CodeNoSelection, Message: "no book is open"}
	ErrRateLimited            = &Error{Code: CodeRateLimited, Message: "too many requests"}
	ErrInternal               = &Error{Code: CodeInternal, Message: "internal error"}
)

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// AlreadyBorrowedf creates an already borrowed error with formatted message.
func AlreadyBorrowedf(format string, args ...any) *Error {
	return &Error{Code: CodeAlreadyBorrowed, Message: fmt.Sprintf(format, args...)}
}

// PersistenceUnavailable wraps a storage failure.
func PersistenceUnavailable(err error, msg string) *Error {
	return &Error{Code: CodePersistenceUnavailable, Message: msg, cause: err}
}

// NoSelection creates a no selection error.
func NoSelection(msg string) *Error {
	return &Error{Code: CodeNoSelection, Message: msg}
}

// RateLimited creates a rate limited error.
func RateLimited(msg string) *Error {
	return &Error{Code: CodeRateLimited, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}

// CodeOf returns the code of the first domain error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
