// Package identity implements sign-in, sign-out and user management.
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sibarkumen/backend/internal/domain/identity"
	"github.com/sibarkumen/backend/internal/domain/shared"
	"github.com/sibarkumen/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthService handles authentication operations
type AuthService struct {
	users     identity.UserRepository
	jwt       *auth.JWTService
	blacklist auth.TokenBlacklist
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	users identity.UserRepository,
	jwt *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		jwt:       jwt,
		blacklist: blacklist,
		logger:    logger,
		now:       time.Now,
	}
}

// SignIn checks the credentials and issues a token pair.
// Unknown emails, wrong passwords and inactive accounts all fail with
// ErrInvalidCredentials so the response does not reveal which one it was.
func (s *AuthService) SignIn(ctx context.Context, req SignInRequest) (*SignInResult, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Sign-in for unknown email", zap.String("email", req.Email))
			return nil, identity.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.VerifyPassword(req.Password) {
		s.logger.Warn("Invalid password", zap.String("user_id", user.ID.String()))
		return nil, identity.ErrInvalidCredentials
	}
	if !user.Active {
		s.logger.Warn("Sign-in for inactive user", zap.String("user_id", user.ID.String()))
		return nil, identity.ErrInvalidCredentials
	}

	tokens, err := s.jwt.GenerateTokenPair(*user.Session(""))
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	user.RecordLogin(s.now())
	if err := s.users.Save(ctx, user); err != nil {
		// The sign-in still succeeds; only the timestamp is lost.
		s.logger.Error("Failed to record sign-in", zap.Error(err))
	}

	s.logger.Info("User signed in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role.String()))
	return &SignInResult{User: ToUserResponse(user), Tokens: tokens}, nil
}

// Refresh exchanges a refresh token for a new pair. The user is reloaded so
// role changes and deactivation take effect.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*auth.TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Refresh token is invalid or expired")
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Refresh token is invalid or expired")
	}
	if s.blacklist != nil {
		revoked, err := s.blacklist.IsUserRevoked(ctx, userID.String(), claims.IssuedAtTime())
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, shared.NewDomainError("INVALID_TOKEN", "Refresh token has been revoked")
		}
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_TOKEN", "Refresh token is invalid or expired")
		}
		return nil, err
	}
	if !user.Active {
		return nil, identity.ErrInvalidCredentials
	}
	return s.jwt.GenerateTokenPair(*user.Session(""))
}

// SignOut revokes the access token the session was resolved from.
func (s *AuthService) SignOut(ctx context.Context, session *identity.Session) error {
	if session == nil || session.TokenID == "" || s.blacklist == nil {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, session.TokenID, s.jwt.AccessTokenExpiration()); err != nil {
		s.logger.Error("Failed to revoke token", zap.String("user_id", session.UserID.String()), zap.Error(err))
		return err
	}
	s.logger.Info("User signed out", zap.String("user_id", session.UserID.String()))
	return nil
}

// Me returns the signed-in user.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.VerifyPassword(req.CurrentPassword) {
		return identity.ErrInvalidCredentials
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		return err
	}
	return s.users.Save(ctx, user)
}
