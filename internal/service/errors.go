// Package service provides application-level services for accounts, decks and administration.
package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check them with errors.Is; the API layer maps them to status codes.
var (
	// ErrNotOwned indicates the caller can see a resource but does not own it.
	// The API layer reports it as 404 so ownership is not disclosed.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrInvalidCredentials is returned when login fails for any reason.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmptyImport is returned when an import contains no cards.
	ErrEmptyImport = errors.New("import contains no cards")

	// ErrImportTooLarge is returned when an import exceeds MaxImportCards.
	ErrImportTooLarge = errors.New("import exceeds the maximum number of cards")
)

// ServiceError wraps unexpected failures with the operation that hit them.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{Operation: operation, Message: message, Err: err}
}
