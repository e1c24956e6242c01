// Package errors provides error types and handling for stackup.
// It includes application errors with stable codes so command code can map
// failures to console output and exit behavior.
package errors

import (
	"errors"
	"fmt"
)

// AppError represents an application error with a stable error code.
type AppError struct {
	// Code is an error code string for programmatic handling
	Code string
	// Message is a user-friendly error message
	Message string
	// Cause is the underlying error (for error wrapping)
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for error unwrapping.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is allows errors.Is to work with AppError.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Code != "" && e.Code == t.Code
	}
	return false
}

// Predefined error codes.
const (
	// Input and configuration error codes.
	ErrCodeMissingInputFile = "MISSING_INPUT_FILE"
	ErrCodeInvalidConfig    = "INVALID_CONFIG"

	// Stack lifecycle error codes.
	ErrCodeStackConflict   = "STACK_CONFLICT"
	ErrCodeRequestRejected = "REQUEST_REJECTED"
	ErrCodeWaitTimeout     = "WAIT_TIMEOUT"
	ErrCodeStackFailed     = "STACK_OPERATION_FAILED"

	// Asset and bucket error codes.
	ErrCodeBucketReclaim = "BUCKET_RECLAIM_FAILED"
	ErrCodeUploadFailed  = "UPLOAD_FAILED"

	// Catch-all.
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// ErrMissingInputFile creates an error for a template or parameters file that
// cannot be read.
func ErrMissingInputFile(path string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeMissingInputFile,
		Message: fmt.Sprintf("cannot read input file %q", path),
		Cause:   cause,
	}
}

// ErrStackConflict creates an error for a stack that already exists when a
// deployment is requested.
func ErrStackConflict(stackName string) *AppError {
	return &AppError{
		Code:    ErrCodeStackConflict,
		Message: fmt.Sprintf("stack %q already exists; delete it first or deploy under different stack names", stackName),
	}
}

// ErrRequestRejected creates an error for a create or delete request the
// service refused to accept.
func ErrRequestRejected(operation, stackName string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeRequestRejected,
		Message: fmt.Sprintf("%s request for stack %q was rejected", operation, stackName),
		Cause:   cause,
	}
}

// ErrWaitTimeout creates an error for a stack poll loop that exhausted its
// attempts without reaching a terminal state.
func ErrWaitTimeout(stackName string, attempts int) *AppError {
	return &AppError{
		Code:    ErrCodeWaitTimeout,
		Message: fmt.Sprintf("gave up waiting for stack %q after %d status checks", stackName, attempts),
	}
}

// ErrStackFailed creates an error for a stack operation that reached a failed
// or rolled-back terminal state.
func ErrStackFailed(stackName, status, reason string) *AppError {
	msg := fmt.Sprintf("stack %q reached status %s", stackName, status)
	if reason != "" {
		msg = fmt.Sprintf("%s (%s)", msg, reason)
	}
	return &AppError{
		Code:    ErrCodeStackFailed,
		Message: msg,
	}
}

// ErrBucketReclaim creates an error for a bucket that could not be emptied.
func ErrBucketReclaim(bucket string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeBucketReclaim,
		Message: fmt.Sprintf("failed to empty bucket %q", bucket),
		Cause:   cause,
	}
}

// ErrUploadFailed creates an error for a static asset that could not be
// published. Callers treat this as non-fatal.
func ErrUploadFailed(key, bucket string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeUploadFailed,
		Message: fmt.Sprintf("failed to upload %q to bucket %q", key, bucket),
		Cause:   cause,
	}
}

// ErrInvalidConfig creates an error for configuration that failed validation.
func ErrInvalidConfig(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidConfig,
		Message: "invalid configuration",
		Cause:   cause,
	}
}

// ErrInternalError creates a catch-all internal error.
func ErrInternalError(message string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeInternalError,
		Message: message,
		Cause:   cause,
	}
}

// GetErrorCode extracts the error code from an error.
// Returns empty string if the error is not an AppError.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetErrorMessage extracts a user-friendly message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// GetErrorDetails extracts detailed error information including the underlying cause.
// Returns the underlying error message if available, otherwise returns the main error message.
func GetErrorDetails(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Cause != nil {
			return appErr.Cause.Error()
		}
		return appErr.Message
	}
	return err.Error()
}
