package domain

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when a privileged operation is attempted
// without an authenticated session.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned on CSRF token mismatch. The message is fixed
// regardless of endpoint.
var ErrForbidden = errors.New("invalid security token")

// ValidationError reports malformed or oversized input. The message names
// the offending field and its limit where applicable.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validationf builds a ValidationError for the given field.
func Validationf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFoundError reports an absent referenced resource.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// NotFound builds a NotFoundError for the named resource.
func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ExternalServiceError reports a failed call to an external sink (the
// publish adapter). Status carries the upstream HTTP status when known.
type ExternalServiceError struct {
	Status  int
	Message string
}

func (e *ExternalServiceError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("external service error (status %d): %s", e.Status, e.Message)
	}
	return "external service error: " + e.Message
}
