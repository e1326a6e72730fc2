package cli

import (
	"grant-fetcher/internal/errors"
	"grant-fetcher/internal/validation"
)

// commandError carries the terminal message for a failed command while
// keeping the original error reachable through Unwrap.
type commandError struct {
	message string
	cause   error
}

func (e *commandError) Error() string { return e.message }
func (e *commandError) Unwrap() error { return e.cause }

// ErrorHandler provides centralized error handling for command handlers
type ErrorHandler struct{}

// NewErrorHandler creates a new error handler
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

// Handle provides user-friendly error messages for validation and other errors
func (eh *ErrorHandler) Handle(operation string, err error) error {
	if err == nil {
		return nil
	}
	return &commandError{
		message: "failed to " + operation + ": " + eh.message(err),
		cause:   err,
	}
}

// HandleSimple provides user-friendly error messages without operation context
func (eh *ErrorHandler) HandleSimple(err error) error {
	if err == nil {
		return nil
	}
	return &commandError{message: eh.message(err), cause: err}
}

func (eh *ErrorHandler) message(err error) string {
	if _, ok := errors.AsAppError(err); ok {
		return errors.GetUserMessage(err)
	}
	if validationErr, ok := err.(*validation.ValidationError); ok {
		return validationErr.GetUserFriendlyMessage()
	}
	return err.Error()
}

// IsValidationError checks if an error is a validation error
func (eh *ErrorHandler) IsValidationError(err error) bool {
	if validation.IsValidationError(err) {
		return true
	}
	return errors.IsErrorType(err, errors.ErrorTypeValidation)
}

// IsNotFoundError checks if an error is a not found error
func (eh *ErrorHandler) IsNotFoundError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeNotFound)
}

// IsDuplicateNameError checks if an error is a duplicate name error
func (eh *ErrorHandler) IsDuplicateNameError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeDuplicateName)
}

// GetErrorCode returns the error code for structured errors
func (eh *ErrorHandler) GetErrorCode(err error) string {
	return errors.GetErrorCode(err)
}
