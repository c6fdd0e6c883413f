package errors

import (
	"errors"
	"fmt"
)

// Common application errors with proper types for error handling

var (
	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates missing or invalid authentication
	ErrUnauthorized = errors.New("unauthorized")

	// ErrStepBlocked indicates the current wizard step does not pass its gate
	ErrStepBlocked = errors.New("step incomplete")

	// ErrDraftIncomplete indicates the aggregate draft fails submit validation
	ErrDraftIncomplete = errors.New("draft incomplete")

	// ErrSubmissionFailed indicates the remote submission was aborted
	ErrSubmissionFailed = errors.New("submission failed")

	// ErrFilePolicy indicates a file was rejected by the attachment policy
	ErrFilePolicy = errors.New("file rejected")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")
)

// NotFoundError creates a not found error with context
func NotFoundError(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}

// InvalidInputError creates an invalid input error with context
func InvalidInputError(field, reason string) error {
	return fmt.Errorf("%s: %s: %w", field, reason, ErrInvalidInput)
}

// FilePolicyError creates a file rejection error with a user-facing reason
func FilePolicyError(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrFilePolicy)
}

// SubmissionError wraps the fatal cause of an aborted submission
func SubmissionError(cause error) error {
	return fmt.Errorf("%w: %v", ErrSubmissionFailed, cause)
}

// InternalError creates an internal error with context
func InternalError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrInternal)
}

// Is checks if an error matches a target error (works with wrapped errors)
func Is(err, target error) bool {
	return errors.Is(err, target)
}
