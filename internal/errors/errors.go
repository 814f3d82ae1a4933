package errors

import (
	"fmt"
)

// SiftError is the structured error type for TalentSift.
// It provides rich context for error handling, logging, and API responses.
type SiftError struct {
	// Code is the unique error code (e.g., "ERR_401_INVALID_QUERY").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Upstream, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *SiftError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *SiftError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with SiftError.
func (e *SiftError) Is(target error) bool {
	if t, ok := target.(*SiftError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *SiftError) WithDetail(key, value string) *SiftError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *SiftError) WithSuggestion(suggestion string) *SiftError {
	e.Suggestion = suggestion
	return e
}

// New creates a new SiftError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *SiftError {
	return &SiftError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a SiftError from an existing error.
// The error's message becomes the SiftError message.
func Wrap(code string, err error) *SiftError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// InvalidQuery creates a query validation error.
func InvalidQuery(message string) *SiftError {
	return New(ErrCodeInvalidQuery, message, nil)
}

// NotFound creates a resume-not-found error.
func NotFound(resumeID string) *SiftError {
	return New(ErrCodeResumeNotFound, "resume not found", nil).
		WithDetail("resume_id", resumeID)
}

// Upstream creates an upstream provider error.
func Upstream(provider string, cause error) *SiftError {
	return Wrap(ErrCodeUpstreamUnavailable, cause).
		WithDetail("provider", provider)
}

// Internal creates an unexpected internal error.
func Internal(message string, cause error) *SiftError {
	return New(ErrCodeInternal, message, cause)
}

// CodeOf returns the code of err if it is a SiftError, else ERR_501_INTERNAL.
func CodeOf(err error) string {
	if e, ok := err.(*SiftError); ok {
		return e.Code
	}
	return ErrCodeInternal
}
