package errors

import (
	"errors"
	"fmt"
)

// GrandPyError is the structured error type for GrandPy.
// It carries enough context for logging and for CLI presentation.
type GrandPyError struct {
	// Code is the unique error code (e.g., "ERR_402_UNKNOWN_CATEGORY").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, Internal).
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
func (e *GrandPyError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *GrandPyError) Unwrap() error {
	return e.Cause
}

// Is matches errors by code, so errors.Is(err, New(code, "", nil)) works.
func (e *GrandPyError) Is(target error) bool {
	if t, ok := target.(*GrandPyError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *GrandPyError) WithDetail(key, value string) *GrandPyError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *GrandPyError) WithSuggestion(suggestion string) *GrandPyError {
	e.Suggestion = suggestion
	return e
}

// New creates a new GrandPyError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *GrandPyError {
	return &GrandPyError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a GrandPyError from an existing error.
// The error's message becomes the GrandPyError message.
func Wrap(code string, err error) *GrandPyError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *GrandPyError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// IOError creates an I/O-related error.
func IOError(message string, cause error) *GrandPyError {
	return New(ErrCodeFileNotFound, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *GrandPyError {
	return New(ErrCodeInvalidInput, message, cause)
}

// GazetteerUnavailable reports a word set that cannot be read.
func GazetteerUnavailable(category string, cause error) *GrandPyError {
	return New(ErrCodeGazetteerUnavailable, fmt.Sprintf("gazetteer %q unavailable", category), cause).
		WithDetail("category", category).
		WithSuggestion("Load the word list with 'grandpy load'")
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var ge *GrandPyError
	if errors.As(err, &ge) {
		return ge.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
func IsFatal(err error) bool {
	var ge *GrandPyError
	if errors.As(err, &ge) {
		return ge.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a GrandPyError anywhere in the chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	var ge *GrandPyError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}
