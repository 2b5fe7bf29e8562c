package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresShareStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2024, 4, 8, 0, 0, 0, 0, time.UTC)

	t.Run("create and fetch", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresShareStore(db, discardLogger())

		share, err := domain.NewDeckShare("Xy7k", 3, 1, time.Hour, now)
		require.NoError(t, err)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO deck_shares")).
			WithArgs("Xy7k", int64(3), int64(1), now.Add(time.Hour), now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, s.Create(ctx, share))

		mock.ExpectQuery(regexp.QuoteMeta("FROM deck_shares")).
			WithArgs("Xy7k").
			WillReturnRows(sqlmock.NewRows([]string{"token", "deck_id", "created_by", "expires_at", "created_at"}).
				AddRow("Xy7k", 3, 1, now.Add(time.Hour), now))
		got, err := s.GetByToken(ctx, "Xy7k")
		require.NoError(t, err)
		assert.Equal(t, int64(3), got.DeckID)
	})

	t.Run("unknown token", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresShareStore(db, discardLogger())

		mock.ExpectQuery(regexp.QuoteMeta("FROM deck_shares")).
			WillReturnRows(sqlmock.NewRows([]string{"token", "deck_id", "created_by", "expires_at", "created_at"}))
		_, err := s.GetByToken(ctx, "nope")
		assert.ErrorIs(t, err, store.ErrShareNotFound)
	})

	t.Run("delete expired", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresShareStore(db, discardLogger())

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM deck_shares WHERE expires_at <= $1")).
			WithArgs(now).
			WillReturnResult(sqlmock.NewResult(0, 4))
		n, err := s.DeleteExpired(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})
}

func TestPostgresAssignmentStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("duplicate assignment", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresAssignmentStore(db, discardLogger())

		a, err := domain.NewAssignment(3, 4, 1)
		require.NoError(t, err)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO assignments")).
			WithArgs(int64(3), int64(4), int64(1), sqlmock.AnyArg()).
			WillReturnError(newPgError(uniqueViolationCode))
		assert.ErrorIs(t, s.Create(ctx, a), store.ErrAssignmentExists)
	})

	t.Run("delete missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresAssignmentStore(db, discardLogger())

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM assignments")).
			WithArgs(int64(9)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, s.Delete(ctx, 9), store.ErrAssignmentNotFound)
	})
}
