package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/service/auth"
	"github.com/phrazzld/flashdeck/internal/store"
)

// TokenPair is the result of a successful login, registration or refresh.
type TokenPair struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

// UserService covers registration and authentication.
type UserService interface {
	// Register creates a user and issues a token pair.
	// Returns store.ErrEmailExists when the email is taken.
	Register(ctx context.Context, email, password string) (*TokenPair, error)

	// Login checks credentials and issues a token pair.
	// Any mismatch is reported as ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (*TokenPair, error)

	// Refresh exchanges a refresh token for a new pair. The user is reloaded so
	// admin changes take effect.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore store.UserStore
	jwt       auth.JWTService
	verifier  auth.PasswordVerifier
	db        *sql.DB
	logger    *slog.Logger
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService
func NewUserService(
	db *sql.DB,
	userStore store.UserStore,
	jwt auth.JWTService,
	verifier auth.PasswordVerifier,
	logger *slog.Logger,
) *UserServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	if verifier == nil {
		verifier = auth.NewBcryptVerifier()
	}
	return &UserServiceImpl{
		userStore: userStore,
		jwt:       jwt,
		verifier:  verifier,
		db:        db,
		logger:    logger.With(slog.String("component", "user_service")),
	}
}

// Register implements UserService.Register
func (s *UserServiceImpl) Register(ctx context.Context, email, password string) (*TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(email, password)
	if err != nil {
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("registration with existing email")
			return nil, err
		}
		log.Error("failed to create user", slog.String("error", err.Error()))
		return nil, NewServiceError("register", "failed to create user", err)
	}

	log.Info("user registered", slog.Int64("user_id", user.ID))
	return s.issue(ctx, user)
}

// Login implements UserService.Login
func (s *UserServiceImpl) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to load user for login", slog.String("error", err.Error()))
		return nil, NewServiceError("login", "failed to load user", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("password mismatch", slog.Int64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	return s.issue(ctx, user)
}

// Refresh implements UserService.Refresh
func (s *UserServiceImpl) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userStore.GetByID(ctx, claims.UserID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, auth.ErrInvalidRefreshToken
		}
		return nil, NewServiceError("refresh", "failed to load user", err)
	}
	return s.issue(ctx, user)
}

// GetUser implements UserService.GetUser
func (s *UserServiceImpl) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

func (s *UserServiceImpl) issue(ctx context.Context, user *domain.User) (*TokenPair, error) {
	sub := auth.Subject{UserID: user.ID, IsAdmin: user.IsAdmin}

	access, err := s.jwt.GenerateToken(ctx, sub)
	if err != nil {
		return nil, NewServiceError("issue_tokens", "failed to generate access token", err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(ctx, sub)
	if err != nil {
		return nil, NewServiceError("issue_tokens", "failed to generate refresh token", err)
	}
	return &TokenPair{User: user, AccessToken: access, RefreshToken: refresh}, nil
}
