package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/phrazzld/flashdeck/internal/domain"
)

// ShareStore defines the interface for deck share token persistence.
type ShareStore interface {
	// Create saves a new share.
	Create(ctx context.Context, share *domain.DeckShare) error

	// GetByToken retrieves a share, expired or not.
	// Returns ErrShareNotFound if the token is unknown.
	GetByToken(ctx context.Context, token string) (*domain.DeckShare, error)

	// DeleteExpired removes shares that expired at or before now and
	// reports how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	// WithTx returns a new ShareStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ShareStore
}
