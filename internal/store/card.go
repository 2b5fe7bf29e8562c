package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/flashdeck/internal/domain"
)

// CardStore defines the interface for card data persistence.
type CardStore interface {
	// CreateMultiple saves cards and sets their IDs.
	// Run it inside RunInTransaction so that a failure leaves no partial import.
	CreateMultiple(ctx context.Context, cards []*domain.Card) error

	// GetByID retrieves a card by ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Card, error)

	// GetAccessible retrieves a card whose deck userID owns, was assigned, or is public.
	// Returns ErrCardNotFound otherwise.
	GetAccessible(ctx context.Context, id, userID int64) (*domain.Card, error)

	// ListByDeck returns the cards of a deck ordered by ID.
	ListByDeck(ctx context.Context, deckID int64) ([]*domain.Card, error)

	// Update saves the front and back of an existing card.
	// Returns ErrCardNotFound if the card does not exist.
	Update(ctx context.Context, card *domain.Card) error

	// Delete removes a card; its review states cascade.
	// Returns ErrCardNotFound if the card does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a new CardStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CardStore
}
