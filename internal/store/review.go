package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/phrazzld/flashdeck/internal/domain"
)

// ReviewStore defines the interface for review state persistence.
type ReviewStore interface {
	// Get retrieves the review state of cardID for userID.
	// Returns ErrReviewNotFound if the card was never reviewed by the user.
	Get(ctx context.Context, cardID, userID int64) (*domain.ReviewState, error)

	// Upsert inserts or overwrites the review state of (CardID, UserID) in a single
	// statement. Concurrent upserts of the same pair are last-write-wins.
	Upsert(ctx context.Context, state *domain.ReviewState) error

	// AppendLog records one graded review in the review history.
	AppendLog(ctx context.Context, entry domain.ReviewLogEntry) error

	// DueCards returns up to limit cards of deckID in random order whose review
	// state for userID is absent or has next_review <= now.
	DueCards(ctx context.Context, userID, deckID int64, now time.Time, limit int) ([]*domain.DueCard, error)

	// WithTx returns a new ReviewStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ReviewStore
}

// SignalStore aggregates the per-deck counters recommendations are scored from.
type SignalStore interface {
	// DeckSignals returns one signal per deck relevant to userID: decks the user
	// owns or was assigned (IsOwnedByRequester) and, unless mineOnly, public or
	// assigned decks of other users. recentSince bounds RecentReviewCount.
	DeckSignals(ctx context.Context, userID int64, mineOnly bool, now, recentSince time.Time) ([]domain.DeckSignal, error)
}
