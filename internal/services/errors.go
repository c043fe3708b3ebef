package services

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every service. Handlers map these onto HTTP
// responses with errors.Is.
var (
	ErrValidation         = errors.New("validation error")
	ErrDuplicateIdentity  = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrTaskNotFound       = errors.New("task not found")
	ErrStorageFailure     = errors.New("storage failure")

	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
)

// Validation failures. Each wraps ErrValidation.
var (
	ErrUsernameRequired    = fmt.Errorf("%w: username is required", ErrValidation)
	ErrUsernameLength      = fmt.Errorf("%w: username must be between 3 and 50 characters", ErrValidation)
	ErrEmailInvalid        = fmt.Errorf("%w: a valid email is required", ErrValidation)
	ErrPasswordTooShort    = fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	ErrTitleRequired       = fmt.Errorf("%w: title is required", ErrValidation)
	ErrNoFieldsToUpdate    = fmt.Errorf("%w: no fields to update", ErrValidation)
	ErrInvalidStatus       = fmt.Errorf("%w: status must be one of pending, in_progress, completed", ErrValidation)
	ErrInvalidPriority     = fmt.Errorf("%w: priority must be one of low, medium, high", ErrValidation)
	ErrInvalidSortField    = fmt.Errorf("%w: unsupported sort field", ErrValidation)
	ErrInvalidSortOrder    = fmt.Errorf("%w: sort order must be asc or desc", ErrValidation)
	ErrInvalidWindow       = fmt.Errorf("%w: days must be between 1 and 365", ErrValidation)
	ErrSuggestTextRequired = fmt.Errorf("%w: text is required", ErrValidation)
)

func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageFailure, err)
}
