// Package errors provides the coded error type used across image-maker.
//
// Every failure the generator surfaces on purpose carries a Code so callers can
// branch on the failure class without string matching:
//
//   - CONFIGURATION: the run cannot start (count list length, empty catalog, bad config)
//   - RECOVERABLE_IO: an image could not be decoded after the allowed redraws
//   - GEOMETRY: an object cannot be fitted into a background within the upscale bound
//   - INVALID_INPUT: malformed user input such as a bad colour string or tool argument
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConfiguration, "expected %d counts, got %d", want, got)
//	if errors.Is(err, errors.ErrCodeConfiguration) {
//	    // nothing was generated
//	}
//
// Failures outside these classes (disk full, permission denied) are wrapped with
// fmt.Errorf and propagate unchanged.
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the failure classes of a generation run.
const (
	ErrCodeConfiguration Code = "CONFIGURATION"
	ErrCodeRecoverableIO Code = "RECOVERABLE_IO"
	ErrCodeGeometry      Code = "GEOMETRY"
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
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
