// Package apperr defines the operational error taxonomy shared by handlers and
// middleware. An *Error carries an HTTP status and a message that is safe to
// expose; anything that is not an *Error is rendered as a generic 500.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// WithCause attaches an underlying error for server-side logs. The cause is
// never rendered to clients.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, cause: err}
}

func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Validation(message string) *Error {
	return &Error{Code: http.StatusBadRequest, Message: message}
}

func ValidationDetails(message string, details any) *Error {
	return &Error{Code: http.StatusBadRequest, Message: message, Details: details}
}

func Auth(message string) *Error {
	return &Error{Code: http.StatusUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Code: http.StatusForbidden, Message: message}
}

func NotFound(resource string) *Error {
	return &Error{Code: http.StatusNotFound, Message: resource + " not found"}
}

func Conflict(message string) *Error {
	return &Error{Code: http.StatusConflict, Message: message}
}

// CSRF failures are reported uniformly, without detail.
func CSRF() *Error {
	return &Error{Code: http.StatusForbidden, Message: "Invalid CSRF token"}
}

// IsOperational reports whether err (or anything it wraps) is a taxonomy
// error, i.e. expected and safe to expose.
func IsOperational(err error) bool {
	var ae *Error
	return errors.As(err, &ae)
}

// From extracts the taxonomy error out of err, if any.
func From(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
