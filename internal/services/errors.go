package services

import "errors"

var (
	// ErrUnauthorized means the caller's identity does not match the resource
	// owner, or the caller lacks the required role.
	ErrUnauthorized = errors.New("not authorized")

	ErrNotFound = errors.New("not found")
)

// ValidationError carries a user-facing message for a rejected input, such as
// a disallowed upload type or an oversized file.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
