package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/store"
)

// PostgresSignalStore implements the store.SignalStore interface.
type PostgresSignalStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSignalStore creates a new PostgreSQL implementation of the SignalStore interface.
func NewPostgresSignalStore(db store.DBTX, logger *slog.Logger) *PostgresSignalStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSignalStore{
		db:     db,
		logger: logger.With(slog.String("component", "signal_store")),
	}
}

// Ensure PostgresSignalStore implements store.SignalStore interface
var _ store.SignalStore = (*PostgresSignalStore)(nil)

// deckSignalsQuery produces one personal row per deck the user ($1) owns or was
// assigned and, unless $2 (mine only), one popular row per public deck of another
// user and per assigned deck owned by someone else. Personal rows count the
// user's own due cards and review history; popular rows count every user's
// reviews since $4. $3 is the current time.
//
// Other users' private decks are never candidates: listing them would expose
// their names and ids to someone who cannot open them. An assigned deck is the
// one case where a deck can be both personal and popular, since the user reads
// it but does not own it.
const deckSignalsQuery = `
	WITH personal AS (
		SELECT d.id, d.name, d.owner_id, TRUE AS mine,
		       EXISTS (SELECT 1 FROM assignments a WHERE a.deck_id = d.id AND a.user_id = $1) AS assigned
		FROM decks d
		WHERE d.owner_id = $1
		   OR EXISTS (SELECT 1 FROM assignments a WHERE a.deck_id = d.id AND a.user_id = $1)
	),
	popular AS (
		SELECT d.id, d.name, d.owner_id, FALSE AS mine, FALSE AS assigned
		FROM decks d
		WHERE NOT $2::boolean
		  AND d.owner_id <> $1
		  AND (d.is_public
		       OR EXISTS (SELECT 1 FROM assignments a WHERE a.deck_id = d.id AND a.user_id = $1))
	),
	candidates AS (
		SELECT * FROM personal
		UNION ALL
		SELECT * FROM popular
	)
	SELECT c.id, c.name, c.owner_id, c.mine,
	       CASE WHEN c.mine THEN due.n ELSE 0 END AS due_count,
	       CASE WHEN c.mine AND c.assigned THEN due.n ELSE 0 END AS assigned_due_count,
	       (SELECT COUNT(*)
	          FROM review_log l
	          JOIN cards k ON k.id = l.card_id
	         WHERE k.deck_id = c.id
	           AND l.reviewed_at >= $4
	           AND (NOT c.mine OR l.user_id = $1)) AS recent_count,
	       CASE WHEN c.mine THEN
	           (SELECT COUNT(*)
	              FROM review_log l
	              JOIN cards k ON k.id = l.card_id
	             WHERE k.deck_id = c.id AND l.user_id = $1 AND l.grade <= 1)
	       ELSE 0 END AS wrong_count
	FROM candidates c
	CROSS JOIN LATERAL (
		SELECT COUNT(*) AS n
		FROM cards k
		LEFT JOIN reviews r ON r.card_id = k.id AND r.user_id = $1
		WHERE k.deck_id = c.id
		  AND (r.next_review IS NULL OR r.next_review <= $3)
	) due
	ORDER BY c.mine DESC, c.id
`

// DeckSignals implements store.SignalStore.DeckSignals
func (s *PostgresSignalStore) DeckSignals(
	ctx context.Context,
	userID int64,
	mineOnly bool,
	now, recentSince time.Time,
) ([]domain.DeckSignal, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, deckSignalsQuery, userID, mineOnly, now.UTC(), recentSince.UTC())
	if err != nil {
		log.Error("failed to aggregate deck signals",
			slog.String("error", err.Error()),
			slog.Int64("user_id", userID))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	signals := []domain.DeckSignal{}
	for rows.Next() {
		var sig domain.DeckSignal
		err := rows.Scan(
			&sig.DeckID,
			&sig.Name,
			&sig.OwnerID,
			&sig.IsOwnedByRequester,
			&sig.DueCount,
			&sig.AssignedDueCount,
			&sig.RecentReviewCount,
			&sig.WrongCount,
		)
		if err != nil {
			return nil, MapError(err)
		}
		signals = append(signals, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return signals, nil
}
