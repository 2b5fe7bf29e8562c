package study

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/mocks"
	"github.com/phrazzld/flashdeck/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 10, 14, 5, 30, 0, time.UTC)

type recordingInvalidator struct {
	mu    sync.Mutex
	users []int64
}

func (r *recordingInvalidator) InvalidateUser(_ context.Context, userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, userID)
}

func (r *recordingInvalidator) invalidated() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.users...)
}

type fixture struct {
	svc      *studyServiceImpl
	mock     sqlmock.Sqlmock
	cards    *mocks.MockCardStore
	decks    *mocks.MockDeckStore
	reviews  *mocks.MockReviewStore
	rankings *recordingInvalidator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	f := &fixture{
		mock: mock,
		cards: &mocks.MockCardStore{
			GetAccessibleFn: func(_ context.Context, id, _ int64) (*domain.Card, error) {
				return &domain.Card{ID: id, DeckID: 1, Front: "q", Back: "a"}, nil
			},
		},
		decks:    &mocks.MockDeckStore{},
		reviews:  &mocks.MockReviewStore{},
		rankings: &recordingInvalidator{},
	}

	svc := NewService(Deps{
		DB:          db,
		CardStore:   f.cards,
		DeckStore:   f.decks,
		ReviewStore: f.reviews,
		Rankings:    f.rankings,
	}, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	f.svc = svc.(*studyServiceImpl)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func TestNewService_DueLimit(t *testing.T) {
	t.Parallel()

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	deps := Deps{DB: db, CardStore: &mocks.MockCardStore{}, DeckStore: &mocks.MockDeckStore{}, ReviewStore: &mocks.MockReviewStore{}}

	assert.Equal(t, DefaultDueLimit, NewService(deps, 0, nil).(*studyServiceImpl).dueLimit)
	assert.Equal(t, MaxDueLimit, NewService(deps, 100, nil).(*studyServiceImpl).dueLimit)
	assert.Equal(t, MaxDueLimit, NewService(deps, 500, nil).(*studyServiceImpl).dueLimit)
	assert.Equal(t, 5, NewService(deps, 5, nil).(*studyServiceImpl).dueLimit)
	assert.Equal(t, 20, MaxDueLimit)

	assert.Panics(t, func() { NewService(Deps{}, 0, nil) })
}

func TestSubmitReview_FirstReview(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	state, err := f.svc.SubmitReview(context.Background(), 7, 99, domain.GradeGood)
	require.NoError(t, err)

	assert.Equal(t, int64(99), state.CardID)
	assert.Equal(t, int64(7), state.UserID)
	assert.Equal(t, 1, state.IntervalDays)
	assert.Equal(t, 1, state.Repetitions)
	assert.InDelta(t, 2.5, state.EaseFactor, 1e-9)
	require.NotNil(t, state.NextReviewAt)
	assert.Equal(t, fixedNow.AddDate(0, 0, 1), *state.NextReviewAt)

	require.Len(t, f.reviews.Upserted, 1)
	require.Len(t, f.reviews.Logged, 1)
	assert.Equal(t, domain.ReviewLogEntry{CardID: 99, UserID: 7, Grade: domain.GradeGood, ReviewedAt: fixedNow}, f.reviews.Logged[0])
	assert.Equal(t, []int64{7}, f.rankings.invalidated())
}

func TestSubmitReview_UsesPriorState(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.reviews.GetFn = func(_ context.Context, cardID, userID int64) (*domain.ReviewState, error) {
		return &domain.ReviewState{CardID: cardID, UserID: userID, EaseFactor: 2.5, IntervalDays: 6, Repetitions: 2}, nil
	}
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	state, err := f.svc.SubmitReview(context.Background(), 7, 99, domain.GradeGood)
	require.NoError(t, err)
	assert.Equal(t, 15, state.IntervalDays)
	assert.Equal(t, 3, state.Repetitions)
}

func TestSubmitReview_AgainResetsSchedule(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.reviews.GetFn = func(context.Context, int64, int64) (*domain.ReviewState, error) {
		return &domain.ReviewState{EaseFactor: 2.1, IntervalDays: 30, Repetitions: 5}, nil
	}
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	state, err := f.svc.SubmitReview(context.Background(), 7, 99, domain.GradeAgain)
	require.NoError(t, err)
	assert.Equal(t, 0, state.IntervalDays)
	assert.Equal(t, 0, state.Repetitions)
	assert.InDelta(t, 2.1, state.EaseFactor, 1e-9)
	assert.Equal(t, fixedNow, *state.NextReviewAt)
}

func TestSubmitReview_Errors(t *testing.T) {
	t.Parallel()

	t.Run("invalid grade", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.SubmitReview(context.Background(), 7, 99, domain.Grade(4))
		assert.ErrorIs(t, err, domain.ErrInvalidGrade)
	})

	t.Run("invalid card id", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.SubmitReview(context.Background(), 7, 0, domain.GradeGood)
		assert.ErrorIs(t, err, domain.ErrInvalidID)
	})

	t.Run("card not accessible", func(t *testing.T) {
		f := newFixture(t)
		f.cards.GetAccessibleFn = func(context.Context, int64, int64) (*domain.Card, error) {
			return nil, store.ErrCardNotFound
		}
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		_, err := f.svc.SubmitReview(context.Background(), 7, 99, domain.GradeGood)
		assert.ErrorIs(t, err, ErrCardNotFound)
		assert.Empty(t, f.reviews.Upserted)
		assert.Empty(t, f.rankings.invalidated())
	})

	t.Run("upsert failure rolls back", func(t *testing.T) {
		f := newFixture(t)
		f.reviews.UpsertFn = func(context.Context, *domain.ReviewState) error {
			return errors.New("connection reset")
		}
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		_, err := f.svc.SubmitReview(context.Background(), 7, 99, domain.GradeEasy)
		var serviceErr *ServiceError
		require.ErrorAs(t, err, &serviceErr)
		assert.Equal(t, "submit_review", serviceErr.Operation)
		assert.Empty(t, f.reviews.Logged)
		assert.Empty(t, f.rankings.invalidated())
	})

	t.Run("log failure rolls back", func(t *testing.T) {
		f := newFixture(t)
		f.reviews.AppendLogFn = func(context.Context, domain.ReviewLogEntry) error {
			return errors.New("disk full")
		}
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()

		_, err := f.svc.SubmitReview(context.Background(), 7, 99, domain.GradeEasy)
		var serviceErr *ServiceError
		assert.ErrorAs(t, err, &serviceErr)
	})
}

func TestDueCards(t *testing.T) {
	t.Parallel()

	t.Run("passes limit and now", func(t *testing.T) {
		f := newFixture(t)
		f.decks.GetAccessibleFn = func(_ context.Context, id, _ int64) (*domain.Deck, error) {
			return &domain.Deck{ID: id}, nil
		}
		var gotLimit int
		var gotNow time.Time
		f.reviews.DueCardsFn = func(_ context.Context, _, _ int64, now time.Time, limit int) ([]*domain.DueCard, error) {
			gotLimit, gotNow = limit, now
			return []*domain.DueCard{{Card: domain.Card{ID: 1}, EaseFactor: 2.5}}, nil
		}

		cards, err := f.svc.DueCards(context.Background(), 7, 3)
		require.NoError(t, err)
		assert.Len(t, cards, 1)
		assert.Equal(t, DefaultDueLimit, gotLimit)
		assert.Equal(t, fixedNow, gotNow)
	})

	t.Run("configured limit above the cap", func(t *testing.T) {
		f := newFixture(t)
		f.svc = NewService(Deps{
			DB:          f.svc.db,
			CardStore:   f.cards,
			DeckStore:   f.decks,
			ReviewStore: f.reviews,
		}, 100, nil).(*studyServiceImpl)
		f.decks.GetAccessibleFn = func(_ context.Context, id, _ int64) (*domain.Deck, error) {
			return &domain.Deck{ID: id}, nil
		}
		var gotLimit int
		f.reviews.DueCardsFn = func(_ context.Context, _, _ int64, _ time.Time, limit int) ([]*domain.DueCard, error) {
			gotLimit = limit
			return nil, nil
		}

		_, err := f.svc.DueCards(context.Background(), 7, 3)
		require.NoError(t, err)
		assert.Equal(t, 20, gotLimit)
	})

	t.Run("deck not visible", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.DueCards(context.Background(), 7, 3)
		assert.ErrorIs(t, err, ErrDeckNotFound)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newFixture(t)
		f.decks.GetAccessibleFn = func(_ context.Context, id, _ int64) (*domain.Deck, error) {
			return &domain.Deck{ID: id}, nil
		}
		f.reviews.DueCardsFn = func(context.Context, int64, int64, time.Time, int) ([]*domain.DueCard, error) {
			return nil, errors.New("timeout")
		}
		_, err := f.svc.DueCards(context.Background(), 7, 3)
		var serviceErr *ServiceError
		require.ErrorAs(t, err, &serviceErr)
		assert.Equal(t, "due_cards", serviceErr.Operation)
	})
}
