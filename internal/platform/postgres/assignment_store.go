package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/store"
)

// PostgresAssignmentStore implements the store.AssignmentStore interface.
type PostgresAssignmentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAssignmentStore creates a new PostgreSQL implementation of the AssignmentStore interface.
func NewPostgresAssignmentStore(db store.DBTX, logger *slog.Logger) *PostgresAssignmentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAssignmentStore{
		db:     db,
		logger: logger.With(slog.String("component", "assignment_store")),
	}
}

var _ store.AssignmentStore = (*PostgresAssignmentStore)(nil)

const assignmentColumns = `id, deck_id, user_id, assigned_by, created_at`

// WithTx implements store.AssignmentStore.WithTx
func (s *PostgresAssignmentStore) WithTx(tx *sql.Tx) store.AssignmentStore {
	return &PostgresAssignmentStore{db: tx, logger: s.logger}
}

// Create implements store.AssignmentStore.Create
func (s *PostgresAssignmentStore) Create(ctx context.Context, a *domain.Assignment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO assignments (deck_id, user_id, assigned_by, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query, a.DeckID, a.UserID, a.AssignedBy, a.CreatedAt).Scan(&a.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return MapUniqueViolation(err, store.ErrAssignmentExists)
		}
		log.Error("failed to create assignment",
			slog.String("error", err.Error()),
			slog.Int64("deck_id", a.DeckID),
			slog.Int64("user_id", a.UserID))
		return MapError(err)
	}

	log.Info("deck assigned",
		slog.Int64("assignment_id", a.ID),
		slog.Int64("deck_id", a.DeckID),
		slog.Int64("user_id", a.UserID))
	return nil
}

func (s *PostgresAssignmentStore) query(ctx context.Context, query string, args ...any) ([]*domain.Assignment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query assignments",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	out := []*domain.Assignment{}
	for rows.Next() {
		var a domain.Assignment
		if err := rows.Scan(&a.ID, &a.DeckID, &a.UserID, &a.AssignedBy, &a.CreatedAt); err != nil {
			return nil, MapError(err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return out, nil
}

// ListByUser implements store.AssignmentStore.ListByUser
func (s *PostgresAssignmentStore) ListByUser(ctx context.Context, userID int64) ([]*domain.Assignment, error) {
	return s.query(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE user_id = $1 ORDER BY created_at DESC, id DESC`,
		userID)
}

// ListAll implements store.AssignmentStore.ListAll
func (s *PostgresAssignmentStore) ListAll(ctx context.Context, limit, offset int) ([]*domain.Assignment, error) {
	return s.query(ctx,
		`SELECT `+assignmentColumns+` FROM assignments ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
}

// Delete implements store.AssignmentStore.Delete
func (s *PostgresAssignmentStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete assignment",
			slog.String("error", err.Error()),
			slog.Int64("assignment_id", id))
		return mapWriteError("assignment", "delete", err)
	}
	return CheckRowsAffected(result, store.ErrAssignmentNotFound)
}
