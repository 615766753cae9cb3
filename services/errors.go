package services

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
)

// Error kinds. Every error returned by a service wraps exactly one of them,
// so callers can branch with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrInvalidID  = errors.New("invalid id")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrInternal   = errors.New("internal error")

	// ErrUnauthorized is only produced by AdminService
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a user-facing service error.
// Message is safe to show to clients; Err carries the technical cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func newError(kind error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func validationError(format string, args ...interface{}) error {
	return newError(ErrValidation, format, args...)
}

func invalidIDError(entity string) error {
	return newError(ErrInvalidID, "Invalid %s ID format", entity)
}

func notFoundError(entity string) error {
	return newError(ErrNotFound, "%s not found", entity)
}

func conflictError(format string, args ...interface{}) error {
	return newError(ErrConflict, format, args...)
}

// internalError logs the store failure and hides it behind message
func internalError(component string, message string, err error) error {
	log.Printf("[%s] %s: %v", component, message, err)
	return &Error{Kind: ErrInternal, Message: message, Err: err}
}

// storeError translates a GORM failure into the service taxonomy.
// Errors that are already service errors pass through untouched.
func storeError(component string, entity string, message string, err error) error {
	var svcErr *Error
	switch {
	case errors.As(err, &svcErr):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFoundError(entity)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{Kind: ErrConflict, Message: fmt.Sprintf("%s with the same unique field already exists", entity), Err: err}
	default:
		return internalError(component, message, err)
	}
}
