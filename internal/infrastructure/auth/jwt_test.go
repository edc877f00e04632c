package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sibarkumen/backend/internal/domain/identity"
	"github.com/sibarkumen/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-key-that-is-long-enough",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "sibarkumen-test",
	}
}

func testSession() identity.Session {
	return identity.Session{
		UserID: uuid.New(),
		Name:   "Siti Rahma",
		Email:  "siti@example.go.id",
		Role:   identity.RoleStaff,
	}
}

func TestJWTService_GenerateTokenPair(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	user := testSession()

	pair, err := svc.GenerateTokenPair(user)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.UserID.String(), claims.Subject)
	assert.Equal(t, "Siti Rahma", claims.Name)
	assert.Equal(t, "siti@example.go.id", claims.Email)
	assert.Equal(t, "staff", claims.Role)
	assert.Equal(t, "sibarkumen-test", claims.Issuer)
	assert.NotEmpty(t, claims.ID)

	refresh, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.UserID.String(), refresh.Subject)
	assert.Empty(t, refresh.Role)
	assert.NotEqual(t, claims.ID, refresh.ID)
}

func TestJWTService_TokenTypeMismatch(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	pair, err := svc.GenerateTokenPair(testSession())
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)

	_, err = svc.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestJWTService_Expired(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }
	pair, err := svc.GenerateTokenPair(testSession())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)

	_, err = svc.ValidateRefreshToken(pair.RefreshToken)
	assert.NoError(t, err)
}

func TestJWTService_RejectsForeignTokens(t *testing.T) {
	svc := NewJWTService(testJWTConfig())

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		cfg := testJWTConfig()
		cfg.Secret = "another-secret-key-that-is-long-enough"
		pair, err := NewJWTService(cfg).GenerateTokenPair(testSession())
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other issuer", func(t *testing.T) {
		cfg := testJWTConfig()
		cfg.Issuer = "someone-else"
		pair, err := NewJWTService(cfg).GenerateTokenPair(testSession())
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		claims := svc.claims(uuid.New(), time.Now(), time.Minute, TokenTypeAccess)
		raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("subject is not a uuid", func(t *testing.T) {
		claims := svc.claims(uuid.New(), time.Now(), time.Minute, TokenTypeAccess)
		claims.Subject = "admin"
		raw, err := svc.sign(claims)
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(raw)
		assert.ErrorIs(t, err, ErrInvalidClaims)
	})
}

func TestClaims_RemainingTTL(t *testing.T) {
	now := time.Now()
	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute))}}
	assert.InDelta(t, time.Minute.Seconds(), c.RemainingTTL(now).Seconds(), 1)
	assert.Zero(t, c.RemainingTTL(now.Add(time.Hour)))
	assert.Zero(t, (&Claims{}).RemainingTTL(now))
}
