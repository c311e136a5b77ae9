package types

import "errors"

// Validation errors. Returned to the caller; the operation leaves state untouched.
var (
	ErrInvalidTitle      = errors.New("title must not be empty")
	ErrInvalidText       = errors.New("text must not be empty")
	ErrInvalidName       = errors.New("name must not be empty")
	ErrInvalidRecurrence = errors.New("invalid recurrence rule")
)

// Lookup errors. The store treats unknown IDs as no-ops; ErrNotFound is only
// produced by callers that need to report a missing entity.
var (
	ErrNotFound = errors.New("entity not found")
)

// Gateway errors.
var (
	ErrPermissionDenied       = errors.New("notification permission not granted")
	ErrInvalidTrigger         = errors.New("reminder trigger time must be set")
	ErrGeneratorNotConfigured = errors.New("subtask generator is not configured")
	ErrGeneratorFailed        = errors.New("subtask generation failed")
	ErrStoreClosed            = errors.New("store is closed")
)

// IsValidation reports whether err is one of the validation errors.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidTitle) ||
		errors.Is(err, ErrInvalidText) ||
		errors.Is(err, ErrInvalidName) ||
		errors.Is(err, ErrInvalidRecurrence)
}
