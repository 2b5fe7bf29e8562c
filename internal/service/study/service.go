// Package study records graded reviews and selects due cards.
package study

import (
	"context"
	"errors"
	"fmt"

	"github.com/phrazzld/flashdeck/internal/domain"
)

// Service provides the review workflow of the study screen.
type Service interface {
	// SubmitReview grades cardID for userID and persists the rescheduled state.
	// The card must belong to a deck the user can read.
	//
	// Returns:
	//   - domain.ErrInvalidGrade when grade is outside 0..3
	//   - ErrCardNotFound when the card does not exist or is not visible to the user
	//   - *ServiceError wrapping the cause for persistence failures
	SubmitReview(ctx context.Context, userID, cardID int64, grade domain.Grade) (*domain.ReviewState, error)

	// DueCards returns up to the configured limit of cards in deckID that are
	// due for userID, in random order. Never-reviewed cards are always due.
	//
	// Returns ErrDeckNotFound when the deck is not visible to the user.
	DueCards(ctx context.Context, userID, deckID int64) ([]*domain.DueCard, error)
}

// Common error types for the study service
var (
	// ErrCardNotFound indicates the card does not exist or is not visible to the user.
	ErrCardNotFound = errors.New("card not found")

	// ErrDeckNotFound indicates the deck does not exist or is not visible to the user.
	ErrDeckNotFound = errors.New("deck not found")
)

// ServiceError wraps errors from the study service with additional context.
// This allows consumers to differentiate between different types of service errors
// using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "submit_review", "due_cards")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewSubmitReviewError returns a new ServiceError for the submit_review operation.
func NewSubmitReviewError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "submit_review", Message: message, Err: err}
}

// NewDueCardsError returns a new ServiceError for the due_cards operation.
func NewDueCardsError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "due_cards", Message: message, Err: err}
}
