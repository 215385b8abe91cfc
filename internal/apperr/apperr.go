// Package apperr defines the errors that cross the HTTP boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/samber/oops"
)

// Error is an outward-facing failure: an HTTP status plus the message
// written into the {"message": ...} response body.
type Error struct {
	Status  int
	Message string
	// cause is logged but never sent to the client.
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// MissingField is a 422 for an absent or empty required field.
func MissingField(name string) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Message: "Missing field: " + name}
}

// WrongType is a 422 for a field of the wrong JSON type.
func WrongType(name string) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Message: "Incorrect field type: " + name}
}

// UnknownParty is a 422 for a message endpoint that names no user.
func UnknownParty(name string) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Message: "Incorrect field value: " + name}
}

// Conflict is a 400 for a uniqueness violation.
func Conflict(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

// InvalidReference is a 400 for a malformed identifier or filter.
func InvalidReference(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

// BadRequest is a 400 for a body that could not be decoded.
func BadRequest(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

// NotFound is a 404.
func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Message: msg}
}

// Rejected is a 401 for credentials that did not authenticate.
func Rejected() *Error {
	return &Error{Status: http.StatusUnauthorized, Message: "Unauthorized"}
}

// Internal wraps a store or hasher failure. code and the operation name end
// up in the oops context for logging.
func Internal(code, operation string, err error) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Message: http.StatusText(http.StatusInternalServerError),
		cause:   oops.Code(code).With("operation", operation).Wrap(err),
	}
}

// From returns err as an *Error, treating anything unknown as internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("UNEXPECTED", "unknown", err)
}

// IsInternal reports whether err maps to a 500.
func IsInternal(err error) bool {
	return From(err).Status == http.StatusInternalServerError
}
