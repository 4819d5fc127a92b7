// Package apperrors defines the error taxonomy shared by services and handlers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of failure.
type Code string

const (
	CodeBadRequest         Code = "BAD_REQUEST"
	CodeValidationFailed   Code = "VALIDATION_FAILED"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeForbidden          Code = "FORBIDDEN"
	CodeNotFound           Code = "NOT_FOUND"
	CodeConflict           Code = "CONFLICT"
	CodeTooManyRequests    Code = "TOO_MANY_REQUESTS"
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"
	CodeIntegrityViolation Code = "INTEGRITY_VIOLATION"
	CodeInternal           Code = "INTERNAL"
)

// AppError is an error carrying a Code and a client-safe message.
type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"error"`
	Details string `json:"details,omitempty"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode maps the error code to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeBadRequest, CodeValidationFailed:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeIntegrityViolation:
		return http.StatusUnprocessableEntity
	case CodeStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WithDetails returns a copy of e with details attached.
func (e *AppError) WithDetails(details string) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, resource+" not found")
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message)
}

func Forbidden(message string) *AppError {
	return New(CodeForbidden, message)
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message)
}

func BadRequest(message string) *AppError {
	return New(CodeBadRequest, message)
}

func Validation(details string) *AppError {
	return &AppError{Code: CodeValidationFailed, Message: "validation failed", Details: details}
}

// StorageUnavailable wraps a failed read or write against the backing store.
func StorageUnavailable(cause error) *AppError {
	return Wrap(CodeStorageUnavailable, "storage unavailable", cause)
}

func IntegrityViolation(message string) *AppError {
	return New(CodeIntegrityViolation, message)
}

func Internal(cause error) *AppError {
	return Wrap(CodeInternal, "internal server error", cause)
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}
