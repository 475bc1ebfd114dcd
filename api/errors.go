// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-jobs.

package api

import "fmt"

// Common errors used across the library.
var (
	ErrCapacityExhausted = fmt.Errorf("job capacity exhausted")
	ErrSchedulerClosed   = fmt.Errorf("job scheduler is closed")
	ErrInvalidConfig     = fmt.Errorf("invalid job system config")
	ErrNotSupported      = fmt.Errorf("operation not supported")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeInvalidArgument ErrorCode = iota + 1
	ErrCodeResourceExhausted
	ErrCodeClosed
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// Unwrap exposes the sentinel this error was built from, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WrapError creates a structured error that matches cause under errors.Is.
func WrapError(code ErrorCode, cause error, message string) *Error {
	e := NewError(code, fmt.Sprintf("%s: %v", message, cause))
	e.cause = cause
	return e
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
