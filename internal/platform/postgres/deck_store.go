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

// PostgresDeckStore implements the store.DeckStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDeckStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDeckStore creates a new PostgreSQL implementation of the DeckStore interface.
func NewPostgresDeckStore(db store.DBTX, logger *slog.Logger) *PostgresDeckStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDeckStore{
		db:     db,
		logger: logger.With(slog.String("component", "deck_store")),
	}
}

// Ensure PostgresDeckStore implements store.DeckStore interface
var _ store.DeckStore = (*PostgresDeckStore)(nil)

// deckSelect selects every deck column plus its card count from decks aliased d.
const deckSelect = `
	SELECT d.id, d.owner_id, d.name, d.description, d.is_public,
	       (SELECT COUNT(*) FROM cards c WHERE c.deck_id = d.id),
	       d.created_at, d.updated_at
	FROM decks d`

// deckAccessPredicate restricts decks aliased d to those the user in $2 may read.
const deckAccessPredicate = `(d.owner_id = $2 OR d.is_public
	OR EXISTS (SELECT 1 FROM assignments a WHERE a.deck_id = d.id AND a.user_id = $2))`

// WithTx implements store.DeckStore.WithTx
func (s *PostgresDeckStore) WithTx(tx *sql.Tx) store.DeckStore {
	return &PostgresDeckStore{db: tx, logger: s.logger}
}

// Create implements store.DeckStore.Create
func (s *PostgresDeckStore) Create(ctx context.Context, deck *domain.Deck) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := deck.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO decks (owner_id, name, description, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		deck.OwnerID,
		deck.Name,
		deck.Description,
		deck.IsPublic,
		deck.CreatedAt,
		deck.UpdatedAt,
	).Scan(&deck.ID)
	if err != nil {
		log.Error("failed to create deck",
			slog.String("error", err.Error()),
			slog.Int64("owner_id", deck.OwnerID))
		return MapError(err)
	}

	log.Debug("deck created", slog.Int64("deck_id", deck.ID))
	return nil
}

func scanDeck(row rowScanner) (*domain.Deck, error) {
	var d domain.Deck
	err := row.Scan(&d.ID, &d.OwnerID, &d.Name, &d.Description, &d.IsPublic, &d.CardCount, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *PostgresDeckStore) queryDecks(ctx context.Context, query string, args ...any) ([]*domain.Deck, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query decks",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	decks := []*domain.Deck{}
	for rows.Next() {
		d, err := scanDeck(rows)
		if err != nil {
			return nil, MapError(err)
		}
		decks = append(decks, d)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return decks, nil
}

// GetByID implements store.DeckStore.GetByID
func (s *PostgresDeckStore) GetByID(ctx context.Context, id int64) (*domain.Deck, error) {
	deck, err := scanDeck(s.db.QueryRowContext(ctx, deckSelect+` WHERE d.id = $1`, id))
	if err != nil {
		return nil, mapNotFound(err, store.ErrDeckNotFound)
	}
	return deck, nil
}

// GetAccessible implements store.DeckStore.GetAccessible
func (s *PostgresDeckStore) GetAccessible(ctx context.Context, id, userID int64) (*domain.Deck, error) {
	query := deckSelect + ` WHERE d.id = $1 AND ` + deckAccessPredicate
	deck, err := scanDeck(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, mapNotFound(err, store.ErrDeckNotFound)
	}
	return deck, nil
}

// ListForUser implements store.DeckStore.ListForUser
func (s *PostgresDeckStore) ListForUser(ctx context.Context, userID int64) ([]*domain.Deck, error) {
	query := deckSelect + `
		WHERE d.owner_id = $1
		   OR EXISTS (SELECT 1 FROM assignments a WHERE a.deck_id = d.id AND a.user_id = $1)
		ORDER BY d.created_at DESC, d.id DESC`
	return s.queryDecks(ctx, query, userID)
}

// ListAll implements store.DeckStore.ListAll
func (s *PostgresDeckStore) ListAll(ctx context.Context, limit, offset int) ([]*domain.Deck, error) {
	return s.queryDecks(ctx, deckSelect+` ORDER BY d.id LIMIT $1 OFFSET $2`, limit, offset)
}

// Update implements store.DeckStore.Update
func (s *PostgresDeckStore) Update(ctx context.Context, deck *domain.Deck) error {
	if err := deck.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE decks
		SET name = $1, description = $2, is_public = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := s.db.ExecContext(ctx, query, deck.Name, deck.Description, deck.IsPublic, deck.UpdatedAt, deck.ID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update deck",
			slog.String("error", err.Error()),
			slog.Int64("deck_id", deck.ID))
		return mapWriteError("deck", "update", err)
	}
	return CheckRowsAffected(result, store.ErrDeckNotFound)
}

// Delete implements store.DeckStore.Delete
func (s *PostgresDeckStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM decks WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete deck",
			slog.String("error", err.Error()),
			slog.Int64("deck_id", id))
		return mapWriteError("deck", "delete", err)
	}
	return CheckRowsAffected(result, store.ErrDeckNotFound)
}
