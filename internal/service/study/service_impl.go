package study

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/domain/srs"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/store"
)

// DefaultDueLimit is the number of due cards returned when no limit is configured.
const DefaultDueLimit = 20

// MaxDueLimit caps the configured due-card limit. A study session never
// returns more than this many cards.
const MaxDueLimit = 20

// RankingInvalidator drops cached deck rankings a new review has made stale.
type RankingInvalidator interface {
	InvalidateUser(ctx context.Context, userID int64)
}

var _ Service = (*studyServiceImpl)(nil)

type studyServiceImpl struct {
	db          *sql.DB
	cardStore   store.CardStore
	deckStore   store.DeckStore
	reviewStore store.ReviewStore
	srsService  srs.Service
	rankings    RankingInvalidator
	dueLimit    int
	now         func() time.Time
	logger      *slog.Logger
}

// Deps are the collaborators of the study service.
type Deps struct {
	DB          *sql.DB
	CardStore   store.CardStore
	DeckStore   store.DeckStore
	ReviewStore store.ReviewStore
	SRS         srs.Service
	// Rankings is optional.
	Rankings RankingInvalidator
}

// NewService creates the study service. A non-positive dueLimit falls back to
// DefaultDueLimit and anything above MaxDueLimit is clamped to it.
func NewService(deps Deps, dueLimit int, logger *slog.Logger) Service {
	if deps.DB == nil {
		panic("db cannot be nil")
	}
	if deps.CardStore == nil || deps.DeckStore == nil || deps.ReviewStore == nil {
		panic("stores cannot be nil")
	}
	if deps.SRS == nil {
		deps.SRS = srs.NewDefaultService()
	}
	if dueLimit <= 0 {
		dueLimit = DefaultDueLimit
	}
	dueLimit = min(dueLimit, MaxDueLimit)
	if logger == nil {
		logger = slog.Default()
	}

	return &studyServiceImpl{
		db:          deps.DB,
		cardStore:   deps.CardStore,
		deckStore:   deps.DeckStore,
		reviewStore: deps.ReviewStore,
		srsService:  deps.SRS,
		rankings:    deps.Rankings,
		dueLimit:    dueLimit,
		now:         time.Now,
		logger:      logger.With(slog.String("component", "study_service")),
	}
}

// SubmitReview implements Service.SubmitReview.
func (s *studyServiceImpl) SubmitReview(
	ctx context.Context,
	userID, cardID int64,
	grade domain.Grade,
) (*domain.ReviewState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !grade.Valid() {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidGrade, int(grade))
	}
	if cardID <= 0 {
		return nil, domain.ErrInvalidID
	}

	now := s.now().UTC()
	var next *domain.ReviewState

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		cards := s.cardStore.WithTx(tx)
		reviews := s.reviewStore.WithTx(tx)

		if _, err := cards.GetAccessible(ctx, cardID, userID); err != nil {
			if store.IsNotFoundError(err) {
				return ErrCardNotFound
			}
			return fmt.Errorf("failed to load card: %w", err)
		}

		prior, err := reviews.Get(ctx, cardID, userID)
		if err != nil {
			if !store.IsNotFoundError(err) {
				return fmt.Errorf("failed to load review state: %w", err)
			}
			prior = nil
		}

		next, err = s.srsService.Apply(prior, grade, now)
		if err != nil {
			return fmt.Errorf("failed to schedule review: %w", err)
		}
		next.CardID = cardID
		next.UserID = userID

		if err := reviews.Upsert(ctx, next); err != nil {
			return fmt.Errorf("failed to save review state: %w", err)
		}
		return reviews.AppendLog(ctx, domain.ReviewLogEntry{
			CardID:     cardID,
			UserID:     userID,
			Grade:      grade,
			ReviewedAt: next.ReviewedAt,
		})
	})
	if err != nil {
		if errors.Is(err, ErrCardNotFound) {
			log.Debug("review for inaccessible card",
				slog.Int64("user_id", userID),
				slog.Int64("card_id", cardID))
			return nil, err
		}
		log.Error("failed to submit review",
			slog.String("error", err.Error()),
			slog.Int64("user_id", userID),
			slog.Int64("card_id", cardID))
		return nil, NewSubmitReviewError("failed to record review", err)
	}

	if s.rankings != nil {
		s.rankings.InvalidateUser(ctx, userID)
	}

	log.Debug("review recorded",
		slog.Int64("user_id", userID),
		slog.Int64("card_id", cardID),
		slog.String("grade", grade.String()),
		slog.Float64("ease_factor", next.EaseFactor),
		slog.Int("interval_days", next.IntervalDays))
	return next, nil
}

// DueCards implements Service.DueCards.
func (s *studyServiceImpl) DueCards(ctx context.Context, userID, deckID int64) ([]*domain.DueCard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if deckID <= 0 {
		return nil, domain.ErrInvalidID
	}

	if _, err := s.deckStore.GetAccessible(ctx, deckID, userID); err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrDeckNotFound
		}
		log.Error("failed to load deck",
			slog.String("error", err.Error()),
			slog.Int64("deck_id", deckID))
		return nil, NewDueCardsError("failed to load deck", err)
	}

	cards, err := s.reviewStore.DueCards(ctx, userID, deckID, s.now().UTC(), s.dueLimit)
	if err != nil {
		log.Error("failed to select due cards",
			slog.String("error", err.Error()),
			slog.Int64("deck_id", deckID),
			slog.Int64("user_id", userID))
		return nil, NewDueCardsError("failed to select due cards", err)
	}
	return cards, nil
}
