package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/flashdeck/internal/domain"
)

// DeckStore defines the interface for deck data persistence.
type DeckStore interface {
	// Create saves a new deck and sets its ID.
	Create(ctx context.Context, deck *domain.Deck) error

	// GetByID retrieves a deck regardless of who is asking.
	// Returns ErrDeckNotFound if the deck does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Deck, error)

	// GetAccessible retrieves a deck that userID owns, was assigned, or that is public.
	// Returns ErrDeckNotFound otherwise, so that callers cannot probe for other users' decks.
	GetAccessible(ctx context.Context, id, userID int64) (*domain.Deck, error)

	// ListForUser returns the decks userID owns or was assigned, newest first.
	ListForUser(ctx context.Context, userID int64) ([]*domain.Deck, error)

	// ListAll returns every deck ordered by ID.
	ListAll(ctx context.Context, limit, offset int) ([]*domain.Deck, error)

	// Update saves name, description and visibility of an existing deck.
	// Returns ErrDeckNotFound if the deck does not exist.
	Update(ctx context.Context, deck *domain.Deck) error

	// Delete removes a deck. Cards, review states, assignments and shares
	// are removed by ON DELETE CASCADE.
	// Returns ErrDeckNotFound if the deck does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a new DeckStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) DeckStore
}
