package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	notFound := []error{
		ErrNotFound, ErrUserNotFound, ErrDeckNotFound, ErrCardNotFound,
		ErrReviewNotFound, ErrAssignmentNotFound, ErrShareNotFound,
		fmt.Errorf("get deck: %w", ErrDeckNotFound),
		NewStoreError("card", "get", "lookup failed", ErrCardNotFound),
	}
	for _, err := range notFound {
		assert.True(t, IsNotFoundError(err), "%v should be a not found error", err)
		assert.False(t, IsDuplicateError(err), "%v should not be a duplicate error", err)
	}

	duplicate := []error{
		ErrDuplicate, ErrEmailExists, ErrAssignmentExists,
		fmt.Errorf("register: %w", ErrEmailExists),
	}
	for _, err := range duplicate {
		assert.True(t, IsDuplicateError(err), "%v should be a duplicate error", err)
		assert.False(t, IsNotFoundError(err), "%v should not be a not found error", err)
	}

	assert.False(t, IsNotFoundError(nil))
	assert.False(t, IsDuplicateError(errors.New("some error")))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := NewStoreError("review", "upsert", "failed to save review state", cause)

	assert.Equal(t, "upsert operation on review failed: failed to save review state: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)

	var storeErr *StoreError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &storeErr))
	assert.Equal(t, "review", storeErr.Entity)

	bare := NewStoreError("deck", "delete", "still referenced", nil)
	assert.Equal(t, "delete operation on deck failed: still referenced", bare.Error())
}
