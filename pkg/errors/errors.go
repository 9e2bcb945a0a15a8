// Package errors provides structured error types for meshsurgery.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the kernel, pipeline and CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The kernel reports two families of failure:
//   - PRECONDITION_VIOLATION: the requested edit is not applicable to the local
//     topology. The mesh is left exactly as it was.
//   - INVARIANT_VIOLATION: a structural invariant does not hold. Inside a
//     collapse this is detected before commit and the edit is rolled back.
//
// Everything else (INVALID_*, NOT_FOUND, NON_MANIFOLD, ...) describes input
// and configuration problems outside the kernel.
//
// # Usage
//
//	err := errors.New(errors.ErrCodePrecondition, "far vertex %d has degree %d", t, d)
//	if errors.Is(err, errors.ErrCodePrecondition) {
//	    // skip this edge
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "failed to read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Kernel errors
	ErrCodePrecondition   Code = "PRECONDITION_VIOLATION"
	ErrCodeInvariant      Code = "INVARIANT_VIOLATION"
	ErrCodeNotCollapsible Code = "NOT_COLLAPSIBLE"
	ErrCodeNonManifold    Code = "NON_MANIFOLD"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidShape  Code = "INVALID_SHAPE"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Fatal reports whether err signals mesh corruption rather than an edit
// that simply does not apply.
func Fatal(err error) bool {
	return Is(err, ErrCodeInvariant) || Is(err, ErrCodeInternal)
}
