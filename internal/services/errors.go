package services

import "errors"

// Common service errors
var (
	ErrNotFound        = errors.New("enregistrement introuvable")
	ErrInvalidPassword = errors.New("mot de passe invalide")
	ErrUnauthorized    = errors.New("non autorisé")
)

// ValidationError reports a constraint violation on user input (dates,
// availability). Its message is shown to the caller as-is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with the given message
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// IsValidationError reports whether err is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// UserError reports a business-rule refusal (wrong state for an action,
// duplicate invoice). Its message is shown to the caller as-is.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

// NewUserError creates a UserError with the given message
func NewUserError(message string) error {
	return &UserError{Message: message}
}

// IsUserError reports whether err is a UserError
func IsUserError(err error) bool {
	var ue *UserError
	return errors.As(err, &ue)
}
