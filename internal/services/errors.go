package services

import (
	"errors"
	"fmt"

	apperrors "github.com/physiotrack/evalform-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrAuthRequired  = errors.New("authentication required")
	ErrForbidden     = errors.New("forbidden - insufficient permissions")
	ErrInternalError = errors.New("internal server error")

	// Taxonomy-level failures. Every operation resolves to exactly one of
	// these at the handler boundary.
	ErrFetchFailed      = errors.New("failed to load data")
	ErrValidationFailed = errors.New("validation failed")
	ErrPersistFailed    = errors.New("failed to save data")
	ErrShareFailed      = errors.New("failed to share response")
	ErrDeleteFailed     = errors.New("failed to delete response")
	ErrMalformedRecord  = errors.New("malformed record")

	// Not-found sub-causes
	ErrFormNotFound     = errors.New("evaluation form not found")
	ErrResponseNotFound = errors.New("form response not found")
	ErrMessageNotFound  = errors.New("message not found")
	ErrUserNotFound     = errors.New("user not found")

	// Response specific errors
	ErrResponseAccessDenied = errors.New("access denied to form response")
	ErrResponseNotEditable  = errors.New("form responses cannot be edited after submission")

	// Sharing specific errors
	ErrShareToSelf = errors.New("cannot share a response with yourself")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID string `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %s - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrFormNotFound) ||
		errors.Is(err, ErrResponseNotFound) ||
		errors.Is(err, ErrMessageNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrAuthRequired) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrResponseAccessDenied) {
		return true
	}
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsMalformed checks if error represents a record that failed strict decoding
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedRecord)
}
