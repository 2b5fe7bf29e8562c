package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/flashdeck/internal/domain"
)

// AssignmentStore defines the interface for deck assignment persistence.
type AssignmentStore interface {
	// Create saves a new assignment and sets its ID.
	// Returns ErrAssignmentExists if the deck is already assigned to the user.
	Create(ctx context.Context, assignment *domain.Assignment) error

	// ListByUser returns the assignments of userID, newest first.
	ListByUser(ctx context.Context, userID int64) ([]*domain.Assignment, error)

	// ListAll returns every assignment, newest first.
	ListAll(ctx context.Context, limit, offset int) ([]*domain.Assignment, error)

	// Delete removes an assignment.
	// Returns ErrAssignmentNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a new AssignmentStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) AssignmentStore
}
