package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for API responses and client handling.
type Code string

const (
	CodeValidation    Code = "validation"
	CodeAuthorization Code = "authorization"
	CodeNotFound      Code = "not_found"
	CodeConflict      Code = "conflict"
	CodeNetwork       Code = "network"
	CodeInternal      Code = "internal"
)

var statusCodes = map[Code]int{
	CodeValidation:    http.StatusBadRequest,
	CodeAuthorization: http.StatusForbidden,
	CodeNotFound:      http.StatusNotFound,
	CodeConflict:      http.StatusConflict,
	CodeNetwork:       http.StatusBadGateway,
	CodeInternal:      http.StatusInternalServerError,
}

// Error is the error type shared by the API handlers and the client SDK.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status for the error code.
func (e *Error) Status() int {
	if s, ok := statusCodes[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func Validation(format string, args ...interface{}) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func Authorization(format string, args ...interface{}) *Error {
	return &Error{Code: CodeAuthorization, Message: fmt.Sprintf(format, args...)}
}

func NotFound(resource string) *Error {
	return &Error{Code: CodeNotFound, Message: resource + " not found"}
}

func Conflict(format string, args ...interface{}) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

func Network(message string, err error) *Error {
	return &Error{Code: CodeNetwork, Message: message, Err: err}
}

func Internal(message string, err error) *Error {
	return &Error{Code: CodeInternal, Message: message, Err: err}
}

// CodeOf extracts the code from an error, defaulting to internal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

func IsValidation(err error) bool    { return CodeOf(err) == CodeValidation }
func IsAuthorization(err error) bool { return CodeOf(err) == CodeAuthorization }
func IsNotFound(err error) bool      { return CodeOf(err) == CodeNotFound }
func IsNetwork(err error) bool       { return CodeOf(err) == CodeNetwork }
