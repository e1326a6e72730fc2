package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("cause")

	tests := []struct {
		name         string
		err          *AppError
		expectedType ErrorType
		expectedCode string
	}{
		{"config", NewConfigError("missing key", nil), ErrorTypeConfig, "CONFIG_ERROR"},
		{"validation", NewValidationError("invalid filter", cause), ErrorTypeValidation, "VALIDATION_FAILED"},
		{"invalid input", NewInvalidInputError("pages", "x", "not a number"), ErrorTypeValidation, "INVALID_INPUT"},
		{"auth", NewAuthError(401, "invalid key"), ErrorTypeAuth, "AUTH_FAILED"},
		{"request", NewRequestError("fetch page 1", cause), ErrorTypeRequest, "REQUEST_FAILED"},
		{"api", NewAPIError(500, "internal"), ErrorTypeAPI, "API_ERROR"},
		{"malformed", NewMalformedResponseError("data is not an object", nil), ErrorTypeMalformedResponse, "MALFORMED_RESPONSE"},
		{"write", NewWriteError("out.json", cause), ErrorTypeWrite, "WRITE_FAILED"},
		{"not found", NewNotFoundError("saved search", "nope"), ErrorTypeNotFound, "NOT_FOUND"},
		{"duplicate", NewDuplicateNameError("saved search", "dup"), ErrorTypeDuplicateName, "DUPLICATE_NAME"},
		{"database", NewDatabaseError("insert run", cause), ErrorTypeDatabase, "DATABASE_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedType, tt.err.Type)
			assert.Equal(t, tt.expectedCode, tt.err.Code)
			assert.True(t, IsErrorType(tt.err, tt.expectedType))
		})
	}
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("saved search", "nonprofits-2024")

	assert.Equal(t, "saved search not found: nonprofits-2024", err.Message)
	resource, ok := err.GetContext("resource")
	assert.True(t, ok)
	assert.Equal(t, "saved search", resource)
}

func TestNewAPIError(t *testing.T) {
	err := NewAPIError(429, "rate limit exceeded")

	assert.Equal(t, "remote service returned 429: rate limit exceeded", err.Message)
	status, ok := err.GetContext("status")
	assert.True(t, ok)
	assert.Equal(t, 429, status)
}

func TestWrapError(t *testing.T) {
	cause := errors.New("original error")
	err := WrapError(cause, ErrorTypeWrite, "wrapped message")

	assert.Equal(t, ErrorTypeWrite, err.Type)
	assert.Equal(t, "write", err.Code)
	assert.Equal(t, cause, err.Cause)
}

func TestAsAppError(t *testing.T) {
	appError := NewAuthError(403, "forbidden")
	wrapped := fmt.Errorf("fetch: %w", appError)

	result, ok := AsAppError(wrapped)
	assert.True(t, ok)
	assert.Same(t, appError, result)

	result, ok = AsAppError(errors.New("regular error"))
	assert.False(t, ok)
	assert.Nil(t, result)

	assert.False(t, IsAppError(nil))
}

func TestGetUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Validation error",
			err:      NewValidationError("invalid filter", nil),
			expected: "invalid filter",
		},
		{
			name:     "Not found error",
			err:      NewNotFoundError("saved search", "abc"),
			expected: "saved search not found: abc",
		},
		{
			name:     "Duplicate name",
			err:      NewDuplicateNameError("saved search", "abc"),
			expected: "saved search already exists: abc",
		},
		{
			name:     "Config error",
			err:      NewConfigError("CANDID_API_KEY is not set", nil),
			expected: "configuration error: CANDID_API_KEY is not set",
		},
		{
			name:     "Auth error",
			err:      NewAuthError(401, "invalid subscription key"),
			expected: "the grants API rejected the API key: invalid subscription key",
		},
		{
			name:     "Request error",
			err:      NewRequestError("fetch page 1", errors.New("dial tcp: timeout")),
			expected: "could not reach the grants API: dial tcp: timeout",
		},
		{
			name:     "API error",
			err:      NewAPIError(500, "internal"),
			expected: "remote service returned 500: internal",
		},
		{
			name:     "Write error",
			err:      NewWriteError("out/a.json", errors.New("permission denied")),
			expected: "could not write out/a.json: permission denied",
		},
		{
			name:     "Database error",
			err:      NewDatabaseError("query", errors.New("locked")),
			expected: "A database error occurred. Please try again.",
		},
		{
			name:     "Regular error",
			err:      errors.New("regular error"),
			expected: "regular error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetUserMessage(tt.err))
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, "AUTH_FAILED", GetErrorCode(NewAuthError(401, "x")))
	assert.Equal(t, "UNKNOWN_ERROR", GetErrorCode(errors.New("regular error")))
}

func TestShouldLogError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"Validation error", NewValidationError("invalid", nil), false},
		{"Not found error", NewNotFoundError("saved search", "x"), false},
		{"Duplicate name error", NewDuplicateNameError("saved search", "x"), false},
		{"Auth error", NewAuthError(401, "x"), true},
		{"Request error", NewRequestError("fetch", errors.New("x")), true},
		{"Write error", NewWriteError("x", errors.New("x")), true},
		{"Regular error", errors.New("regular error"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShouldLogError(tt.err))
		})
	}
}

type friendlyCause struct{}

func (friendlyCause) Error() string                  { return "field errors" }
func (friendlyCause) GetUserFriendlyMessage() string { return "start year is required" }

func TestGetUserMessage_UsesFriendlyCause(t *testing.T) {
	err := NewValidationError("invalid search filter", friendlyCause{})
	assert.Equal(t, "invalid search filter: start year is required", GetUserMessage(err))
}
