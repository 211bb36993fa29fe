// Package errors provides structured error types for the formation editor.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the editors and the preview server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages for inline display
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_FOUND_*: Resource not found
//   - INTERNAL_*: Unexpected internal errors
//
// Interaction attempts the editor rejects (placing on an occupied cell,
// dragging off the grid, editing while a transition runs) are not errors and
// never produce one of these values.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidLabel, "label too long: %q", label)
//	if errors.Is(err, errors.ErrCodeInvalidLabel) {
//	    // show inline message, keep the dialog open
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidProject, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidStage   Code = "INVALID_STAGE"
	ErrCodeInvalidLabel   Code = "INVALID_LABEL"
	ErrCodeInvalidProject Code = "INVALID_PROJECT"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidPath    Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"
	ErrCodeSceneNotFound Code = "SCENE_NOT_FOUND"

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

// HTTPStatus maps an error code onto the status the preview server replies
// with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeNotFound, ErrCodeFileNotFound, ErrCodeSceneNotFound:
		return 404
	case ErrCodeInvalidInput, ErrCodeInvalidStage, ErrCodeInvalidLabel,
		ErrCodeInvalidProject, ErrCodeInvalidFormat, ErrCodeInvalidPath:
		return 400
	case ErrCodeUnsupported:
		return 501
	default:
		return 500
	}
}
