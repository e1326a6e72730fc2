package errors

import (
	"errors"
	"fmt"
)

// NewConfigError creates an error for missing or malformed configuration,
// including saved searches that cannot be decoded.
func NewConfigError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Message: message,
		Code:    "CONFIG_ERROR",
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Code:    "VALIDATION_FAILED",
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewInvalidInputError creates a validation error for a single field
func NewInvalidInputError(field string, value interface{}, reason string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: fmt.Sprintf("invalid input for %s: %s", field, reason),
		Code:    "INVALID_INPUT",
		Context: map[string]interface{}{
			"field":  field,
			"value":  value,
			"reason": reason,
		},
	}
}

// NewAuthError creates an error for a request the remote service refused
func NewAuthError(status int, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeAuth,
		Message: message,
		Code:    "AUTH_FAILED",
		Context: map[string]interface{}{
			"status": status,
		},
	}
}

// NewRequestError creates an error for a request that never got a response
func NewRequestError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeRequest,
		Message: fmt.Sprintf("request failed: %s", operation),
		Code:    "REQUEST_FAILED",
		Cause:   cause,
		Context: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewAPIError creates an error for a non-success response from the remote service
func NewAPIError(status int, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeAPI,
		Message: fmt.Sprintf("remote service returned %d: %s", status, message),
		Code:    "API_ERROR",
		Context: map[string]interface{}{
			"status": status,
		},
	}
}

// NewMalformedResponseError creates an error for a success response whose body
// does not have the expected shape
func NewMalformedResponseError(reason string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeMalformedResponse,
		Message: fmt.Sprintf("unexpected response body: %s", reason),
		Code:    "MALFORMED_RESPONSE",
		Cause:   cause,
		Context: map[string]interface{}{
			"reason": reason,
		},
	}
}

// NewWriteError creates an error for a failed filesystem write
func NewWriteError(path string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeWrite,
		Message: fmt.Sprintf("could not write %s", path),
		Code:    "WRITE_FAILED",
		Cause:   cause,
		Context: map[string]interface{}{
			"path": path,
		},
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, identifier string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, identifier),
		Code:    "NOT_FOUND",
		Context: map[string]interface{}{
			"resource":   resource,
			"identifier": identifier,
		},
	}
}

// NewDuplicateNameError creates an error for a name that is already taken
func NewDuplicateNameError(resource string, name string) *AppError {
	return &AppError{
		Type:    ErrorTypeDuplicateName,
		Message: fmt.Sprintf("%s already exists: %s", resource, name),
		Code:    "DUPLICATE_NAME",
		Context: map[string]interface{}{
			"resource": resource,
			"name":     name,
		},
	}
}

// NewDatabaseError creates a new database error
func NewDatabaseError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeDatabase,
		Message: fmt.Sprintf("database operation failed: %s", operation),
		Code:    "DATABASE_ERROR",
		Cause:   cause,
		Context: map[string]interface{}{
			"operation": operation,
		},
	}
}

// WrapError wraps an existing error with additional context
func WrapError(err error, errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Code:    errorType.String(),
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsErrorType checks if the error is of the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.IsType(errorType)
	}
	return false
}

// userFriendly is implemented by causes that carry their own terminal wording,
// such as validation.ValidationError.
type userFriendly interface {
	GetUserFriendlyMessage() string
}

// GetUserMessage returns a message suitable for printing to the terminal
func GetUserMessage(err error) string {
	appErr, ok := AsAppError(err)
	if !ok {
		return err.Error()
	}

	switch appErr.Type {
	case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeDuplicateName:
		if friendly, ok := appErr.Cause.(userFriendly); ok {
			return fmt.Sprintf("%s: %s", appErr.Message, friendly.GetUserFriendlyMessage())
		}
		if appErr.Cause != nil {
			return fmt.Sprintf("%s: %v", appErr.Message, appErr.Cause)
		}
		return appErr.Message
	case ErrorTypeConfig:
		if appErr.Cause != nil {
			return fmt.Sprintf("configuration error: %s (%v)", appErr.Message, appErr.Cause)
		}
		return "configuration error: " + appErr.Message
	case ErrorTypeAuth:
		return "the grants API rejected the API key: " + appErr.Message
	case ErrorTypeRequest:
		return fmt.Sprintf("could not reach the grants API: %v", appErr.Cause)
	case ErrorTypeAPI, ErrorTypeMalformedResponse:
		return appErr.Message
	case ErrorTypeWrite:
		return fmt.Sprintf("%s: %v", appErr.Message, appErr.Cause)
	case ErrorTypeDatabase:
		return "A database error occurred. Please try again."
	default:
		return "An unexpected error occurred. Please try again."
	}
}

// GetErrorCode returns the error code for the error
func GetErrorCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return "UNKNOWN_ERROR"
}

// ShouldLogError determines if an error should be logged based on its type
func ShouldLogError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeDuplicateName:
			return false // user errors
		default:
			return true
		}
	}
	return true
}
