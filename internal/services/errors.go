package services

import (
	"errors"
	"fmt"

	"github.com/InternBridge/internship-service/internal/validator"
)

// ValidationErrors re-exports the validator type so handlers can map it
// without importing the validator package directly.
type ValidationErrors = validator.ValidationErrors

// Sentinel errors. Handlers branch on these with errors.Is; message text is
// diagnostic only.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInternshipNotFound  = errors.New("internship not found")
	ErrApplicationNotFound = errors.New("application not found")

	ErrEmailTaken       = errors.New("email already registered")
	ErrAlreadyApplied   = errors.New("already applied to this internship")
	ErrInvalidLogin     = errors.New("invalid credentials")
	ErrUnverified       = errors.New("account not verified")
	ErrForbidden        = errors.New("forbidden")
	ErrStorageDown      = errors.New("storage unavailable")
	ErrValidationFailed = errors.New("validation failed")
)

// PermissionError carries the context of a role or ownership violation.
type PermissionError struct {
	UserID   string
	Resource string
	Action   string
	Reason   string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s on %s: %s", e.Action, e.Resource, e.Reason)
}

func (e *PermissionError) Is(target error) bool {
	return target == ErrForbidden
}

func NewPermissionError(userID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:   userID,
		Resource: resource,
		Action:   action,
		Reason:   reason,
	}
}
