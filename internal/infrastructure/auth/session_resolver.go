package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sibarkumen/backend/internal/domain/identity"
)

// ErrNoToken means the request carried neither a session cookie nor a
// bearer token.
var ErrNoToken = errors.New("no session token")

// SessionResolver turns the token on a request into a Session.
type SessionResolver struct {
	jwt        *JWTService
	blacklist  TokenBlacklist
	cookieName string
}

// NewSessionResolver creates a SessionResolver. blacklist may be nil.
func NewSessionResolver(jwt *JWTService, blacklist TokenBlacklist, cookieName string) *SessionResolver {
	return &SessionResolver{jwt: jwt, blacklist: blacklist, cookieName: cookieName}
}

// ResolveSession reads the session cookie, falling back to an
// "Authorization: Bearer" header, and validates the token. Revoked tokens
// and unknown roles are errors.
func (r *SessionResolver) ResolveSession(ctx context.Context, req *http.Request) (*identity.Session, error) {
	raw := r.TokenFromRequest(req)
	if raw == "" {
		return nil, ErrNoToken
	}

	claims, err := r.jwt.ValidateAccessToken(raw)
	if err != nil {
		return nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidClaims
	}
	role, err := identity.ParseRole(claims.Role)
	if err != nil {
		return nil, err
	}

	if r.blacklist != nil {
		revoked, err := r.blacklist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if !revoked {
			revoked, err = r.blacklist.IsUserRevoked(ctx, claims.Subject, claims.IssuedAtTime())
			if err != nil {
				return nil, err
			}
		}
		if revoked {
			return nil, ErrTokenBlacklisted
		}
	}

	return &identity.Session{
		UserID:  userID,
		Name:    claims.Name,
		Email:   claims.Email,
		Role:    role,
		TokenID: claims.ID,
	}, nil
}

// TokenFromRequest returns the raw token from the cookie or the bearer header.
func (r *SessionResolver) TokenFromRequest(req *http.Request) string {
	if c, err := req.Cookie(r.cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	scheme, token, ok := strings.Cut(req.Header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}
