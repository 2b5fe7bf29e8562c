package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/store"
)

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the CardStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

const cardColumns = `c.id, c.deck_id, c.front, c.back, c.created_at, c.updated_at`

// WithTx implements store.CardStore.WithTx
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{db: tx, logger: s.logger}
}

// CreateMultiple implements store.CardStore.CreateMultiple
func (s *PostgresCardStore) CreateMultiple(ctx context.Context, cards []*domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for i, card := range cards {
		if err := card.Validate(); err != nil {
			log.Warn("card validation failed during batch create",
				slog.Int("index", i),
				slog.String("error", err.Error()))
			return fmt.Errorf("%w: card %d: %v", store.ErrInvalidEntity, i, err)
		}
	}

	query := `
		INSERT INTO cards (deck_id, front, back, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	for _, card := range cards {
		err := s.db.QueryRowContext(ctx, query,
			card.DeckID,
			card.Front,
			card.Back,
			card.CreatedAt,
			card.UpdatedAt,
		).Scan(&card.ID)
		if err != nil {
			log.Error("failed to insert card",
				slog.String("error", err.Error()),
				slog.Int64("deck_id", card.DeckID))
			return MapError(err)
		}
	}

	log.Debug("cards created", slog.Int("count", len(cards)))
	return nil
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var c domain.Card
	if err := row.Scan(&c.ID, &c.DeckID, &c.Front, &c.Back, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByID implements store.CardStore.GetByID
func (s *PostgresCardStore) GetByID(ctx context.Context, id int64) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards c WHERE c.id = $1`
	card, err := scanCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapNotFound(err, store.ErrCardNotFound)
	}
	return card, nil
}

// GetAccessible implements store.CardStore.GetAccessible
func (s *PostgresCardStore) GetAccessible(ctx context.Context, id, userID int64) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + `
		FROM cards c
		JOIN decks d ON d.id = c.deck_id
		WHERE c.id = $1 AND ` + deckAccessPredicate
	card, err := scanCard(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, mapNotFound(err, store.ErrCardNotFound)
	}
	return card, nil
}

// ListByDeck implements store.CardStore.ListByDeck
func (s *PostgresCardStore) ListByDeck(ctx context.Context, deckID int64) ([]*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards c WHERE c.deck_id = $1 ORDER BY c.id`
	rows, err := s.db.QueryContext(ctx, query, deckID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list cards",
			slog.String("error", err.Error()),
			slog.Int64("deck_id", deckID))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	cards := []*domain.Card{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, MapError(err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return cards, nil
}

// Update implements store.CardStore.Update
func (s *PostgresCardStore) Update(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `UPDATE cards SET front = $1, back = $2, updated_at = $3 WHERE id = $4`
	result, err := s.db.ExecContext(ctx, query, card.Front, card.Back, card.UpdatedAt, card.ID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update card",
			slog.String("error", err.Error()),
			slog.Int64("card_id", card.ID))
		return mapWriteError("card", "update", err)
	}
	return CheckRowsAffected(result, store.ErrCardNotFound)
}

// Delete implements store.CardStore.Delete
func (s *PostgresCardStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete card",
			slog.String("error", err.Error()),
			slog.Int64("card_id", id))
		return mapWriteError("card", "delete", err)
	}
	return CheckRowsAffected(result, store.ErrCardNotFound)
}
