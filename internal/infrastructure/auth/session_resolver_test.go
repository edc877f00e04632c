package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/sibarkumen/backend/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	require.NoError(t, err)
	return n
}

func newResolver(t *testing.T) (*SessionResolver, *JWTService, *MemoryTokenBlacklist) {
	t.Helper()
	svc := NewJWTService(testJWTConfig())
	bl := NewMemoryTokenBlacklist()
	return NewSessionResolver(svc, bl, "sibarkumen_session"), svc, bl
}

func TestSessionResolver_FromCookie(t *testing.T) {
	r, svc, _ := newResolver(t)
	user := testSession()
	pair, err := svc.GenerateTokenPair(user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "sibarkumen_session", Value: pair.AccessToken})

	session, err := r.ResolveSession(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, session.UserID)
	assert.Equal(t, identity.RoleStaff, session.Role)
	assert.Equal(t, user.Email, session.Email)
	assert.NotEmpty(t, session.TokenID)
}

func TestSessionResolver_FromBearer(t *testing.T) {
	r, svc, _ := newResolver(t)
	pair, err := svc.GenerateTokenPair(testSession())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", "bearer "+pair.AccessToken)

	session, err := r.ResolveSession(context.Background(), req)
	require.NoError(t, err)
	assert.NotNil(t, session)
}

func TestSessionResolver_CookieWins(t *testing.T) {
	r, _, _ := newResolver(t)
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "sibarkumen_session", Value: "from-cookie"})
	req.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-cookie", r.TokenFromRequest(req))
}

func TestSessionResolver_Errors(t *testing.T) {
	r, svc, bl := newResolver(t)
	ctx := context.Background()

	t.Run("no token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.Header.Set("Authorization", "Basic abc")
		_, err := r.ResolveSession(ctx, req)
		assert.ErrorIs(t, err, ErrNoToken)
	})

	t.Run("refresh token", func(t *testing.T) {
		pair, err := svc.GenerateTokenPair(testSession())
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
		_, err = r.ResolveSession(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})

	t.Run("unknown role", func(t *testing.T) {
		user := testSession()
		user.Role = identity.Role("superuser")
		pair, err := svc.GenerateTokenPair(user)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		_, err = r.ResolveSession(ctx, req)
		assert.ErrorIs(t, err, identity.ErrUnknownRole)
	})

	t.Run("revoked token", func(t *testing.T) {
		pair, err := svc.GenerateTokenPair(testSession())
		require.NoError(t, err)
		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		require.NoError(t, bl.Revoke(ctx, claims.ID, time.Minute))

		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		_, err = r.ResolveSession(ctx, req)
		assert.ErrorIs(t, err, ErrTokenBlacklisted)
	})

	t.Run("revoked user", func(t *testing.T) {
		user := testSession()
		pair, err := svc.GenerateTokenPair(user)
		require.NoError(t, err)
		require.NoError(t, bl.RevokeUser(ctx, user.UserID.String(), time.Hour))

		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		_, err = r.ResolveSession(ctx, req)
		assert.ErrorIs(t, err, ErrTokenBlacklisted)
	})
}

func TestSessionResolver_NilBlacklist(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	r := NewSessionResolver(svc, nil, "sibarkumen_session")
	pair, err := svc.GenerateTokenPair(testSession())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "sibarkumen_session", Value: pair.AccessToken})
	_, err = r.ResolveSession(context.Background(), req)
	assert.NoError(t, err)
}
