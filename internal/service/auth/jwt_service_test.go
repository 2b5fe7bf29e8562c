package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/flashdeck/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   "test-jwt-secret-that-is-32-chars-long",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
	}
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newTestService(t *testing.T) (*hmacJWTService, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc, err := newHMACJWTService(testAuthConfig(), c.Now)
	require.NoError(t, err)
	return svc, c
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(testAuthConfig())
	require.NoError(t, err)

	short := testAuthConfig()
	short.JWTSecret = "too-short"
	_, err = NewJWTService(short)
	assert.Error(t, err)

	zero := testAuthConfig()
	zero.TokenLifetimeMinutes = 0
	_, err = NewJWTService(zero)
	assert.Error(t, err)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, c := newTestService(t)

	token, err := svc.GenerateToken(ctx, Subject{UserID: 42, IsAdmin: true})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.True(t, c.now.Add(time.Hour).Equal(claims.ExpiresAt))
	assert.NotEmpty(t, claims.ID)

	other, err := svc.GenerateToken(ctx, Subject{UserID: 42})
	require.NoError(t, err)
	otherClaims, err := svc.ValidateToken(ctx, other)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, otherClaims.ID, "every token gets its own jti")
}

func TestValidateToken_Failures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("expired beyond skew", func(t *testing.T) {
		svc, c := newTestService(t)
		token, err := svc.GenerateToken(ctx, Subject{UserID: 1})
		require.NoError(t, err)

		c.now = c.now.Add(time.Hour + 3*time.Minute)
		_, err = svc.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("within skew still valid", func(t *testing.T) {
		svc, c := newTestService(t)
		token, err := svc.GenerateToken(ctx, Subject{UserID: 1})
		require.NoError(t, err)

		c.now = c.now.Add(time.Hour + time.Minute)
		_, err = svc.ValidateToken(ctx, token)
		assert.NoError(t, err)
	})

	t.Run("refresh token used as access token", func(t *testing.T) {
		svc, _ := newTestService(t)
		token, err := svc.GenerateRefreshToken(ctx, Subject{UserID: 1})
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})

	t.Run("malformed", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.ValidateToken(ctx, "not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("signed with another key", func(t *testing.T) {
		svc, _ := newTestService(t)
		other := testAuthConfig()
		other.JWTSecret = "another-secret-that-is-also-32-chars"
		foreign, err := newHMACJWTService(other, svc.timeFunc)
		require.NoError(t, err)

		token, err := foreign.GenerateToken(ctx, Subject{UserID: 1})
		require.NoError(t, err)
		_, err = svc.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unexpected signing method", func(t *testing.T) {
		svc, c := newTestService(t)
		claims := jwtCustomClaims{
			UserID:    1,
			TokenType: TokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(c.now),
				ExpiresAt: jwt.NewNumericDate(c.now.Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestRefreshToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, c := newTestService(t)

	token, err := svc.GenerateRefreshToken(ctx, Subject{UserID: 7})
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)

	access, err := svc.GenerateToken(ctx, Subject{UserID: 7})
	require.NoError(t, err)
	_, err = svc.ValidateRefreshToken(ctx, access)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	c.now = c.now.Add(25 * time.Hour)
	_, err = svc.ValidateRefreshToken(ctx, token)
	assert.ErrorIs(t, err, ErrExpiredRefreshToken)

	_, err = svc.ValidateRefreshToken(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestBcryptVerifier(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	v := NewBcryptVerifier()
	assert.NoError(t, v.Compare(string(hash), "correct-horse"))
	assert.Error(t, v.Compare(string(hash), "wrong-horse"))
}
