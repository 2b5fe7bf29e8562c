package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/admin/users", "", "").Code)
	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodGet, "/admin/users", userToken, "").Code)
}

func TestAdminListUsers(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	var gotLimit, gotOffset int
	ts.admin.listUsersFn = func(_ context.Context, limit, offset int) ([]*domain.User, error) {
		gotLimit, gotOffset = limit, offset
		return []*domain.User{{ID: 1, Email: "a@example.com", HashedPassword: "secret-hash"}}, nil
	}

	w := ts.do(http.MethodGet, "/admin/users?limit=10&offset=20", adminToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, gotLimit)
	assert.Equal(t, 20, gotOffset)
	assert.NotContains(t, w.Body.String(), "secret-hash")
}

func TestAdminAssign(t *testing.T) {
	t.Parallel()

	t.Run("created", func(t *testing.T) {
		ts := newTestServer(t)
		ts.admin.assignFn = func(_ context.Context, by, deckID, userID int64) (*domain.Assignment, error) {
			return &domain.Assignment{ID: 5, DeckID: deckID, UserID: userID, AssignedBy: by}, nil
		}

		w := ts.do(http.MethodPost, "/admin/assignments", adminToken, `{"deckId":3,"userId":4}`)
		require.Equal(t, http.StatusCreated, w.Code)
		body := decodeBody(t, w)
		assert.EqualValues(t, adminID, body["assigned_by"])
	})

	t.Run("duplicate", func(t *testing.T) {
		ts := newTestServer(t)
		ts.admin.assignFn = func(context.Context, int64, int64, int64) (*domain.Assignment, error) {
			return nil, store.ErrAssignmentExists
		}

		w := ts.do(http.MethodPost, "/admin/assignments", adminToken, `{"deckId":3,"userId":4}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("validation", func(t *testing.T) {
		ts := newTestServer(t)
		w := ts.do(http.MethodPost, "/admin/assignments", adminToken, `{"deckId":3}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAdminUnassign(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ts.admin.unassignFn = func(_ context.Context, id int64) error {
		if id == 99 {
			return store.ErrAssignmentNotFound
		}
		return nil
	}

	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, "/admin/assignments/5", adminToken, "").Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, "/admin/assignments/99", adminToken, "").Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodDelete, "/admin/assignments/x", adminToken, "").Code)
}
