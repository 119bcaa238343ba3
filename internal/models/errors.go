package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes returned in the "code" field of error responses.
const (
	CodeNotFound         = "NOT_FOUND"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeValidation       = "VALIDATION_ERROR"
	CodeConflict         = "CONFLICT"
	CodeRateLimited      = "RATE_LIMITED"
	CodeInternal         = "INTERNAL_ERROR"
)

const internalErrorMessage = "Internal server error"

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Details map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status maps the error code onto an HTTP status.
func (e *AppError) Status() int {
	switch e.Code {
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodePermissionDenied:
		return fiber.StatusForbidden
	case CodeValidation:
		return fiber.StatusBadRequest
	case CodeConflict:
		return fiber.StatusConflict
	case CodeRateLimited:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

// NewNotFoundMessage builds a NOT_FOUND error with a free-form message.
func NewNotFoundMessage(message string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: message,
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewValidationErrorWithDetails builds a VALIDATION_ERROR carrying a field -> message map.
func NewValidationErrorWithDetails(message string, details map[string]string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Details: details,
	}
}

func NewPermissionDeniedError(message string) *AppError {
	return &AppError{
		Code:    CodePermissionDenied,
		Message: message,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: internalErrorMessage,
		Err:     err,
	}
}

// StatusFor classifies any error. Errors that are not an AppError are internal.
func StatusFor(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status()
	}
	return fiber.StatusInternalServerError
}

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// RespondWithError writes a standardized error response. Internal errors never
// expose their cause to the client.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != CodeInternal {
		response = ErrorResponse{
			Error:   appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		}
	} else {
		response = ErrorResponse{
			Error: internalErrorMessage,
			Code:  CodeInternal,
		}
	}

	return c.Status(status).JSON(response)
}
