// Package apperr carries the error taxonomy shared by services and the HTTP layer.
// Codes follow HTTP semantics so transport can map them one to one.
package apperr

import (
	"errors"
	"net/http"
)

type Error struct {
	Code int
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &Error{Code: http.StatusBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &Error{Code: http.StatusUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &Error{Code: http.StatusForbidden, Msg: msg} }
func NotFound(msg string) error     { return &Error{Code: http.StatusNotFound, Msg: msg} }
func TooManyRequests(msg string) error {
	return &Error{Code: http.StatusTooManyRequests, Msg: msg}
}

// Internal wraps an unexpected failure; Msg is never shown to callers.
func Internal(msg string, err error) error {
	return &Error{Code: http.StatusInternalServerError, Msg: msg, Err: err}
}

// CodeOf returns the HTTP-like code for err; unknown errors are 500.
func CodeOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return http.StatusInternalServerError
}

// Is reports whether err carries the given code.
func Is(err error, code int) bool { return err != nil && CodeOf(err) == code }
