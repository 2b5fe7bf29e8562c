package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/store"
)

// DefaultDueLimit is used when DueCards is called without a positive limit.
const DefaultDueLimit = 20

// PostgresReviewStore implements the store.ReviewStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReviewStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewStore creates a new PostgreSQL implementation of the ReviewStore interface.
func NewPostgresReviewStore(db store.DBTX, logger *slog.Logger) *PostgresReviewStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_store")),
	}
}

// Ensure PostgresReviewStore implements store.ReviewStore interface
var _ store.ReviewStore = (*PostgresReviewStore)(nil)

// WithTx implements store.ReviewStore.WithTx
func (s *PostgresReviewStore) WithTx(tx *sql.Tx) store.ReviewStore {
	return &PostgresReviewStore{db: tx, logger: s.logger}
}

// Get implements store.ReviewStore.Get
func (s *PostgresReviewStore) Get(ctx context.Context, cardID, userID int64) (*domain.ReviewState, error) {
	query := `
		SELECT card_id, user_id, ease_factor, interval_days, repetitions, next_review, reviewed_at, last_grade
		FROM reviews
		WHERE card_id = $1 AND user_id = $2
	`

	var (
		state      domain.ReviewState
		nextReview sql.NullTime
		lastGrade  int
	)
	err := s.db.QueryRowContext(ctx, query, cardID, userID).Scan(
		&state.CardID,
		&state.UserID,
		&state.EaseFactor,
		&state.IntervalDays,
		&state.Repetitions,
		&nextReview,
		&state.ReviewedAt,
		&lastGrade,
	)
	if err != nil {
		return nil, mapNotFound(err, store.ErrReviewNotFound)
	}

	state.NextReviewAt = nullTime(nextReview)
	state.LastGrade = domain.Grade(lastGrade)
	return &state, nil
}

// Upsert implements store.ReviewStore.Upsert
func (s *PostgresReviewStore) Upsert(ctx context.Context, state *domain.ReviewState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO reviews (card_id, user_id, ease_factor, interval_days, repetitions, next_review, reviewed_at, last_grade)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (card_id, user_id) DO UPDATE SET
			ease_factor   = EXCLUDED.ease_factor,
			interval_days = EXCLUDED.interval_days,
			repetitions   = EXCLUDED.repetitions,
			next_review   = EXCLUDED.next_review,
			reviewed_at   = EXCLUDED.reviewed_at,
			last_grade    = EXCLUDED.last_grade
	`
	_, err := s.db.ExecContext(ctx, query,
		state.CardID,
		state.UserID,
		state.EaseFactor,
		state.IntervalDays,
		state.Repetitions,
		toNullTime(state.NextReviewAt),
		state.ReviewedAt,
		int(state.LastGrade),
	)
	if err != nil {
		log.Error("failed to upsert review state",
			slog.String("error", err.Error()),
			slog.Int64("card_id", state.CardID),
			slog.Int64("user_id", state.UserID))
		return MapError(err)
	}
	return nil
}

// AppendLog implements store.ReviewStore.AppendLog
func (s *PostgresReviewStore) AppendLog(ctx context.Context, entry domain.ReviewLogEntry) error {
	query := `INSERT INTO review_log (card_id, user_id, grade, reviewed_at) VALUES ($1, $2, $3, $4)`
	_, err := s.db.ExecContext(ctx, query, entry.CardID, entry.UserID, int(entry.Grade), entry.ReviewedAt)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to append review log",
			slog.String("error", err.Error()),
			slog.Int64("card_id", entry.CardID))
		return MapError(err)
	}
	return nil
}

// dueCardsQuery selects cards of deck $2 with no review row for user $1, or one
// whose next_review is NULL or not after $3.
const dueCardsQuery = `
	SELECT c.id, c.deck_id, c.front, c.back, c.created_at, c.updated_at,
	       r.next_review,
	       COALESCE(r.ease_factor, 2.5),
	       COALESCE(r.interval_days, 0),
	       COALESCE(r.repetitions, 0)
	FROM cards c
	LEFT JOIN reviews r ON r.card_id = c.id AND r.user_id = $1
	WHERE c.deck_id = $2
	  AND (r.next_review IS NULL OR r.next_review <= $3)
	ORDER BY random()
	LIMIT $4
`

// DueCards implements store.ReviewStore.DueCards
func (s *PostgresReviewStore) DueCards(
	ctx context.Context,
	userID, deckID int64,
	now time.Time,
	limit int,
) ([]*domain.DueCard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = DefaultDueLimit
	}

	rows, err := s.db.QueryContext(ctx, dueCardsQuery, userID, deckID, now.UTC(), limit)
	if err != nil {
		log.Error("failed to query due cards",
			slog.String("error", err.Error()),
			slog.Int64("deck_id", deckID))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	cards := make([]*domain.DueCard, 0, limit)
	for rows.Next() {
		var (
			dc         domain.DueCard
			nextReview sql.NullTime
		)
		err := rows.Scan(
			&dc.ID,
			&dc.DeckID,
			&dc.Front,
			&dc.Back,
			&dc.CreatedAt,
			&dc.UpdatedAt,
			&nextReview,
			&dc.EaseFactor,
			&dc.IntervalDays,
			&dc.Repetitions,
		)
		if err != nil {
			return nil, MapError(err)
		}
		dc.NextReviewAt = nullTime(nextReview)
		cards = append(cards, &dc)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("due cards selected",
		slog.Int64("deck_id", deckID),
		slog.Int("count", len(cards)))
	return cards, nil
}
