package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresSignalStore_DeckSignals(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 4, 8, 0, 0, 0, 0, time.UTC)
	since := now.AddDate(0, 0, -7)
	cols := []string{"id", "name", "owner_id", "mine", "due_count", "assigned_due_count", "recent_count", "wrong_count"}

	t.Run("scans personal and popular rows", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresSignalStore(db, discardLogger())

		mock.ExpectQuery(regexp.QuoteMeta("CROSS JOIN LATERAL")).
			WithArgs(int64(4), false, now, since).
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow(1, "mine", 4, true, 10, 0, 3, 2).
				AddRow(2, "popular", 9, false, 0, 0, 40, 0))

		signals, err := s.DeckSignals(context.Background(), 4, false, now, since)
		require.NoError(t, err)
		assert.Equal(t, []domain.DeckSignal{
			{DeckID: 1, Name: "mine", OwnerID: 4, IsOwnedByRequester: true, DueCount: 10, RecentReviewCount: 3, WrongCount: 2},
			{DeckID: 2, Name: "popular", OwnerID: 9, RecentReviewCount: 40},
		}, signals)
	})

	t.Run("empty result is not an error", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresSignalStore(db, discardLogger())

		mock.ExpectQuery(regexp.QuoteMeta("WITH personal AS")).
			WithArgs(int64(4), true, now, since).
			WillReturnRows(sqlmock.NewRows(cols))

		signals, err := s.DeckSignals(context.Background(), 4, true, now, since)
		require.NoError(t, err)
		assert.NotNil(t, signals)
		assert.Empty(t, signals)
	})

	t.Run("failure surfaces", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresSignalStore(db, discardLogger())

		mock.ExpectQuery(regexp.QuoteMeta("WITH personal AS")).
			WillReturnError(errors.New("statement timeout"))

		signals, err := s.DeckSignals(context.Background(), 4, false, now, since)
		assert.Error(t, err)
		assert.Nil(t, signals)
	})
}
