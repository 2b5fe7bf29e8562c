package auth

import (
	"context"
	"time"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Subject identifies who a token is issued to.
type Subject struct {
	UserID  int64
	IsAdmin bool
}

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for sub.
	GenerateToken(ctx context.Context, sub Subject) (string, error)

	// ValidateToken validates an access token and returns its claims.
	// Refresh tokens are rejected with ErrWrongTokenType.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateRefreshToken creates a signed refresh token for sub. Refresh tokens
	// live longer than access tokens and can only be exchanged for a new pair.
	GenerateRefreshToken(ctx context.Context, sub Subject) (string, error)

	// ValidateRefreshToken validates a refresh token and returns its claims.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the validated content of a token.
type Claims struct {
	UserID    int64
	IsAdmin   bool
	TokenType string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}
