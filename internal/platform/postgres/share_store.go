package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/store"
)

// PostgresShareStore implements the store.ShareStore interface.
type PostgresShareStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresShareStore creates a new PostgreSQL implementation of the ShareStore interface.
func NewPostgresShareStore(db store.DBTX, logger *slog.Logger) *PostgresShareStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresShareStore{
		db:     db,
		logger: logger.With(slog.String("component", "share_store")),
	}
}

var _ store.ShareStore = (*PostgresShareStore)(nil)

// WithTx implements store.ShareStore.WithTx
func (s *PostgresShareStore) WithTx(tx *sql.Tx) store.ShareStore {
	return &PostgresShareStore{db: tx, logger: s.logger}
}

// Create implements store.ShareStore.Create
func (s *PostgresShareStore) Create(ctx context.Context, share *domain.DeckShare) error {
	query := `
		INSERT INTO deck_shares (token, deck_id, created_by, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query, share.Token, share.DeckID, share.CreatedBy, share.ExpiresAt, share.CreatedAt)
	if err != nil {
		// The token is a secret; only the deck is logged.
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create share",
			slog.String("error", err.Error()),
			slog.Int64("deck_id", share.DeckID))
		return MapError(err)
	}
	return nil
}

// GetByToken implements store.ShareStore.GetByToken
func (s *PostgresShareStore) GetByToken(ctx context.Context, token string) (*domain.DeckShare, error) {
	query := `
		SELECT token, deck_id, created_by, expires_at, created_at
		FROM deck_shares
		WHERE token = $1
	`
	var share domain.DeckShare
	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&share.Token,
		&share.DeckID,
		&share.CreatedBy,
		&share.ExpiresAt,
		&share.CreatedAt,
	)
	if err != nil {
		return nil, mapNotFound(err, store.ErrShareNotFound)
	}
	return &share, nil
}

// DeleteExpired implements store.ShareStore.DeleteExpired
func (s *PostgresShareStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM deck_shares WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to purge expired shares",
			slog.String("error", err.Error()))
		return 0, mapWriteError("share", "delete", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, MapError(err)
	}
	return n, nil
}
