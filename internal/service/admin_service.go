package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/store"
)

// Paging bounds for admin listings.
const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// AdminService exposes the administrative views and deck assignment.
// Callers must have checked that the requester is an admin.
type AdminService interface {
	ListUsers(ctx context.Context, limit, offset int) ([]*domain.User, error)
	ListDecks(ctx context.Context, limit, offset int) ([]*domain.Deck, error)

	// Assign makes deckID part of userID's personal decks.
	// Returns store.ErrAssignmentExists if it already is.
	Assign(ctx context.Context, adminID, deckID, userID int64) (*domain.Assignment, error)
	// ListAssignments returns the assignments of userID, or all when userID is 0.
	ListAssignments(ctx context.Context, userID int64, limit, offset int) ([]*domain.Assignment, error)
	Unassign(ctx context.Context, assignmentID int64) error
}

type adminServiceImpl struct {
	users       store.UserStore
	decks       store.DeckStore
	assignments store.AssignmentStore
	logger      *slog.Logger
}

var _ AdminService = (*adminServiceImpl)(nil)

// NewAdminService creates a new AdminService.
func NewAdminService(
	users store.UserStore,
	decks store.DeckStore,
	assignments store.AssignmentStore,
	logger *slog.Logger,
) AdminService {
	if logger == nil {
		logger = slog.Default()
	}
	return &adminServiceImpl{
		users:       users,
		decks:       decks,
		assignments: assignments,
		logger:      logger.With(slog.String("component", "admin_service")),
	}
}

// ClampPage normalizes limit and offset for listing queries.
func ClampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *adminServiceImpl) ListUsers(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	limit, offset = ClampPage(limit, offset)
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, NewServiceError("list_users", "failed to list users", err)
	}
	return users, nil
}

func (s *adminServiceImpl) ListDecks(ctx context.Context, limit, offset int) ([]*domain.Deck, error) {
	limit, offset = ClampPage(limit, offset)
	decks, err := s.decks.ListAll(ctx, limit, offset)
	if err != nil {
		return nil, NewServiceError("list_decks", "failed to list decks", err)
	}
	return decks, nil
}

func (s *adminServiceImpl) Assign(ctx context.Context, adminID, deckID, userID int64) (*domain.Assignment, error) {
	assignment, err := domain.NewAssignment(deckID, userID, adminID)
	if err != nil {
		return nil, err
	}

	if _, err := s.decks.GetByID(ctx, deckID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.assignments.Create(ctx, assignment); err != nil {
		if errors.Is(err, store.ErrAssignmentExists) {
			return nil, err
		}
		return nil, NewServiceError("assign", "failed to save assignment", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("deck assigned",
		slog.Int64("assignment_id", assignment.ID),
		slog.Int64("deck_id", deckID),
		slog.Int64("user_id", userID),
		slog.Int64("admin_id", adminID))
	return assignment, nil
}

func (s *adminServiceImpl) ListAssignments(ctx context.Context, userID int64, limit, offset int) ([]*domain.Assignment, error) {
	var (
		out []*domain.Assignment
		err error
	)
	if userID > 0 {
		out, err = s.assignments.ListByUser(ctx, userID)
	} else {
		limit, offset = ClampPage(limit, offset)
		out, err = s.assignments.ListAll(ctx, limit, offset)
	}
	if err != nil {
		return nil, NewServiceError("list_assignments", "failed to list assignments", err)
	}
	return out, nil
}

func (s *adminServiceImpl) Unassign(ctx context.Context, assignmentID int64) error {
	if assignmentID <= 0 {
		return domain.ErrInvalidID
	}
	if err := s.assignments.Delete(ctx, assignmentID); err != nil {
		return err
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("assignment removed",
		slog.Int64("assignment_id", assignmentID))
	return nil
}
