package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrandPyError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original error
	originalErr := errors.New("original error")

	// When: wrapping with GrandPyError
	gpErr := New(ErrCodeFileNotFound, "file not found: cities.txt", originalErr)

	// Then: unwrapping returns original error
	require.NotNil(t, gpErr)
	assert.Equal(t, originalErr, errors.Unwrap(gpErr))
	assert.True(t, errors.Is(gpErr, originalErr))
}

func TestGrandPyError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "config error",
			code:     ErrCodeConfigNotFound,
			message:  "config file not found",
			expected: "[ERR_101_CONFIG_NOT_FOUND] config file not found",
		},
		{
			name:     "file error",
			code:     ErrCodeFileNotFound,
			message:  "cities.txt not found",
			expected: "[ERR_201_FILE_NOT_FOUND] cities.txt not found",
		},
		{
			name:     "category error",
			code:     ErrCodeUnknownCategory,
			message:  "unknown category streets",
			expected: "[ERR_402_UNKNOWN_CATEGORY] unknown category streets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestGrandPyError_Is_MatchesByCode(t *testing.T) {
	err1 := New(ErrCodeFileNotFound, "file A not found", nil)
	err2 := New(ErrCodeFileNotFound, "file B not found", nil)
	err3 := New(ErrCodeConfigNotFound, "config not found", nil)

	assert.True(t, errors.Is(err1, err2))
	assert.False(t, errors.Is(err1, err3))
}

func TestGrandPyError_Is_ThroughFmtWrapping(t *testing.T) {
	wrapped := fmt.Errorf("lookup cities: %w", GazetteerUnavailable("cities", errors.New("no such table")))

	assert.True(t, errors.Is(wrapped, New(ErrCodeGazetteerUnavailable, "", nil)))
	assert.Equal(t, ErrCodeGazetteerUnavailable, GetCode(wrapped))
	assert.True(t, IsRetryable(wrapped))
}

func TestGrandPyError_WithDetailsAndSuggestion(t *testing.T) {
	err := New(ErrCodeFileNotFound, "file not found", nil).
		WithDetail("path", "/data/cities.txt").
		WithSuggestion("Check the gazetteer.files config")

	assert.Equal(t, "/data/cities.txt", err.Details["path"])
	assert.Equal(t, "Check the gazetteer.files config", err.Suggestion)
}

func TestGrandPyError_CategoryFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantCategory Category
	}{
		{ErrCodeConfigNotFound, CategoryConfig},
		{ErrCodeConfigInvalid, CategoryConfig},
		{ErrCodeFileNotFound, CategoryIO},
		{ErrCodeFileRead, CategoryIO},
		{ErrCodeStoreLocked, CategoryIO},
		{ErrCodeInvalidInput, CategoryValidation},
		{ErrCodeInvalidWeight, CategoryValidation},
		{ErrCodeInternal, CategoryInternal},
		{ErrCodeGazetteerUnavailable, CategoryInternal},
		{"BAD", CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantCategory, err.Category)
		})
	}
}

func TestGrandPyError_SeverityAndRetryable(t *testing.T) {
	tests := []struct {
		code          string
		wantSeverity  Severity
		wantRetryable bool
	}{
		{ErrCodeStoreCorrupt, SeverityFatal, false},
		{ErrCodeFileNotFound, SeverityError, false},
		{ErrCodeStoreLocked, SeverityWarning, true},
		{ErrCodeGazetteerUnavailable, SeverityWarning, true},
		{ErrCodePassFailed, SeverityWarning, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantSeverity, err.Severity)
			assert.Equal(t, tt.wantRetryable, err.Retryable)
		})
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("something went wrong")

	gpErr := Wrap(ErrCodeInternal, originalErr)

	require.NotNil(t, gpErr)
	assert.Equal(t, ErrCodeInternal, gpErr.Code)
	assert.Equal(t, "something went wrong", gpErr.Message)
	assert.Equal(t, originalErr, gpErr.Cause)
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(New(ErrCodeStoreCorrupt, "corrupt", nil)))
	assert.False(t, IsFatal(ConfigError("bad yaml", nil)))
	assert.False(t, IsFatal(errors.New("plain")))
	assert.False(t, IsFatal(nil))
}

func TestFormatForCLI(t *testing.T) {
	err := GazetteerUnavailable("cities", nil)

	out := FormatForCLI(err)

	assert.Contains(t, out, `Error: gazetteer "cities" unavailable`)
	assert.Contains(t, out, "Hint: Load the word list with 'grandpy load'")
	assert.Contains(t, out, "Code: ERR_502_GAZETTEER_UNAVAILABLE")
	assert.Contains(t, FormatForCLI(errors.New("boom")), "Code: ERR_501_INTERNAL")
	assert.Empty(t, FormatForCLI(nil))
}

func TestLogAttrs(t *testing.T) {
	assert.Nil(t, LogAttrs(nil))
	assert.Len(t, LogAttrs(errors.New("plain")), 1)

	attrs := LogAttrs(ValidationError("bad weight", errors.New("negative")))
	assert.Len(t, attrs, 4)
}
