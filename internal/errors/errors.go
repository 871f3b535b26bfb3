// Package errors provides shared error types that map to both CLI exit codes
// and HTTP status codes, so the CLI and the API report failures the same way.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind represents the category of an error, which determines both the
// CLI exit code and HTTP status code.
type Kind int

const (
	// KindInvalidArgs represents invalid input arguments.
	// CLI exit code: 2, HTTP status: 400 Bad Request
	KindInvalidArgs Kind = iota

	// KindNotFound represents a missing entry.
	// CLI exit code: 3, HTTP status: 404 Not Found
	KindNotFound

	// KindStateError represents an operation on a handle in the wrong state.
	// CLI exit code: 4, HTTP status: 422 Unprocessable Entity
	KindStateError

	// KindInternal represents an internal/database error.
	// CLI exit code: 5, HTTP status: 500 Internal Server Error
	KindInternal

	// KindInvalidDistance represents an elapsed value that cannot be
	// classified (NaN, infinite or negative after taking the absolute value).
	// CLI exit code: 7, HTTP status: 422 Unprocessable Entity
	KindInvalidDistance

	// KindUnknownAction represents a request for an unsupported action name.
	// CLI exit code: 2, HTTP status: 400 Bad Request
	KindUnknownAction

	// KindParseFailure represents a timestamp that could not be parsed.
	// CLI exit code: 2, HTTP status: 400 Bad Request
	KindParseFailure

	// KindGeneral represents a general error that doesn't fit other categories.
	// CLI exit code: 1, HTTP status: 500 Internal Server Error
	KindGeneral
)

// String returns a human-readable name for the error kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidArgs:
		return "InvalidArgs"
	case KindNotFound:
		return "NotFound"
	case KindStateError:
		return "StateError"
	case KindInternal:
		return "Internal"
	case KindInvalidDistance:
		return "InvalidDistance"
	case KindUnknownAction:
		return "UnknownAction"
	case KindParseFailure:
		return "ParseFailure"
	case KindGeneral:
		return "General"
	default:
		return "Unknown"
	}
}

// Error represents a structured error with kind, message, cause, and optional details.
type Error struct {
	Kind       Kind
	Message    string
	Cause      error
	Details    map[string]interface{}
	Suggestion string // Optional suggestion for resolving the error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// CLIExitCode returns the appropriate CLI exit code for this error.
func (e *Error) CLIExitCode() int {
	switch e.Kind {
	case KindInvalidArgs, KindUnknownAction, KindParseFailure:
		return 2
	case KindNotFound:
		return 3
	case KindStateError:
		return 4
	case KindInternal:
		return 5
	case KindInvalidDistance:
		return 7
	default:
		return 1
	}
}

// HTTPStatus returns the appropriate HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidArgs, KindUnknownAction, KindParseFailure:
		return http.StatusBadRequest // 400
	case KindNotFound:
		return http.StatusNotFound // 404
	case KindStateError, KindInvalidDistance:
		return http.StatusUnprocessableEntity // 422
	default:
		return http.StatusInternalServerError
	}
}

// WithDetails adds details to the error and returns it for chaining.
func (e *Error) WithDetails(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds a suggestion to the error and returns it for chaining.
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// NotFound creates an error for missing entries.
func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

// InvalidArgs creates an error for invalid arguments.
func InvalidArgs(format string, args ...interface{}) *Error {
	return newError(KindInvalidArgs, format, args...)
}

// StateError creates an error for operations on a handle in the wrong state.
func StateError(format string, args ...interface{}) *Error {
	return newError(KindStateError, format, args...)
}

// Internal creates an error for internal/database errors.
func Internal(format string, args ...interface{}) *Error {
	return newError(KindInternal, format, args...)
}

// InvalidDistance creates an error for an elapsed value the classifier rejects.
func InvalidDistance(format string, args ...interface{}) *Error {
	return newError(KindInvalidDistance, format, args...)
}

// UnknownAction creates an error for an unsupported action name.
func UnknownAction(action string) *Error {
	return newError(KindUnknownAction, "unknown action '%s'", action).
		WithDetails("action", action)
}

// ParseFailure creates an error for a timestamp that cannot be parsed.
func ParseFailure(input string, cause error) *Error {
	e := newError(KindParseFailure, "cannot parse timestamp %q", input)
	e.Cause = cause
	return e
}

// General creates a general error.
func General(format string, args ...interface{}) *Error {
	return newError(KindGeneral, format, args...)
}

// Wrap wraps an existing error with a specific kind and message.
func Wrap(err error, kind Kind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// WrapInternal wraps an error as an internal error.
func WrapInternal(err error, format string, args ...interface{}) *Error {
	return Wrap(err, KindInternal, format, args...)
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// GetKind extracts the Kind from an error chain, returning KindGeneral if no
// *Error is found.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindGeneral
}

// GetCLIExitCode extracts the CLI exit code from an error.
func GetCLIExitCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.CLIExitCode()
	}
	return 1
}

// GetHTTPStatus extracts the HTTP status code from an error.
func GetHTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// Is returns true if any error in the chain is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
