package apperr

import (
	"errors"
	"net/http"
)

// Error is the application-level error carried from services up to the HTTP
// boundary, where it is rendered as {"error": <category>, "message": <msg>}.
type Error struct {
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is/As; the cause is never
// rendered to clients.
func (e *Error) Unwrap() error {
	return e.cause
}

// Category is the error label shown to clients, derived from the status code.
func (e *Error) Category() string {
	return http.StatusText(e.Status)
}

// WithCause attaches an internal cause for logging without changing the
// client-visible message.
func (e *Error) WithCause(err error) *Error {
	return &Error{Status: e.Status, Message: e.Message, cause: err}
}

// Validation signals malformed, missing, or conflicting input.
func Validation(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

// InvalidCredentials is returned for any failed login. The message is
// deliberately identical whether the identifier or the password was wrong.
func InvalidCredentials() *Error {
	return &Error{Status: http.StatusUnauthorized, Message: "Invalid credentials"}
}

// InvalidToken is returned for any token verification failure. The message
// does not distinguish expiry from tampering or malformed input.
func InvalidToken() *Error {
	return &Error{Status: http.StatusUnauthorized, Message: "Invalid or expired token. Please login again."}
}

// Unauthorized signals that a principal is required and none was presented.
func Unauthorized(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: msg}
}

// Forbidden signals an authenticated principal lacking the required role.
func Forbidden(msg string) *Error {
	return &Error{Status: http.StatusForbidden, Message: msg}
}

// NotFound signals a missing entity.
func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Message: msg}
}

// Conflict signals an invariant violation detected at commit time.
func Conflict(msg string) *Error {
	return &Error{Status: http.StatusConflict, Message: msg}
}

// Upstream signals a failure in a dependency we proxy to. The client gets a
// generic message; the cause stays in the logs.
func Upstream(msg string) *Error {
	return &Error{Status: http.StatusBadGateway, Message: msg}
}

// As extracts an *Error from an error chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
