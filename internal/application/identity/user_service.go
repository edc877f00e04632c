package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sibarkumen/backend/internal/domain/identity"
	"github.com/sibarkumen/backend/internal/domain/shared"
	"github.com/sibarkumen/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// UserService manages dashboard accounts. Changing a user's role or
// deactivating them revokes every token issued to them so far.
type UserService struct {
	users     identity.UserRepository
	blacklist auth.TokenBlacklist
	revokeTTL time.Duration
	logger    *zap.Logger
}

// NewUserService creates a new UserService. revokeTTL should be the refresh
// token lifetime: past it, no token issued before the revocation survives.
func NewUserService(users identity.UserRepository, blacklist auth.TokenBlacklist, revokeTTL time.Duration, logger *zap.Logger) *UserService {
	return &UserService{users: users, blacklist: blacklist, revokeTTL: revokeTTL, logger: logger}
}

// List returns a page of users
func (s *UserService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[UserResponse], error) {
	users, total, err := s.users.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	filter = filter.Normalize()
	page := shared.NewPaginated(ToUserResponses(users), total, filter.Page, filter.PageSize)
	return &page, nil
}

// Get returns one user
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// Create registers a new user
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	role, err := identity.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	taken, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A user with this email already exists")
	}

	user, err := identity.NewUser(req.Email, req.Name, req.Password, role)
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("User created", zap.String("user_id", user.ID.String()), zap.String("role", role.String()))
	resp := ToUserResponse(user)
	return &resp, nil
}

// ChangeRole assigns a new role. An admin cannot demote themselves, so the
// office is never left without one by accident.
func (s *UserService) ChangeRole(ctx context.Context, actor *identity.Session, id uuid.UUID, req ChangeRoleRequest) (*UserResponse, error) {
	role, err := identity.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	if actor != nil && actor.UserID == id && role != identity.RoleAdmin {
		return nil, shared.NewDomainError("INVALID_OPERATION", "You cannot change your own role")
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		resp := ToUserResponse(user)
		return &resp, nil
	}
	if err := user.ChangeRole(role); err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	s.revoke(ctx, user.ID)

	s.logger.Info("User role changed", zap.String("user_id", user.ID.String()), zap.String("role", role.String()))
	resp := ToUserResponse(user)
	return &resp, nil
}

// Deactivate blocks a user and revokes their tokens
func (s *UserService) Deactivate(ctx context.Context, actor *identity.Session, id uuid.UUID) (*UserResponse, error) {
	if actor != nil && actor.UserID == id {
		return nil, shared.NewDomainError("INVALID_OPERATION", "You cannot deactivate yourself")
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	s.revoke(ctx, user.ID)

	s.logger.Info("User deactivated", zap.String("user_id", user.ID.String()))
	resp := ToUserResponse(user)
	return &resp, nil
}

// Activate re-enables a user
func (s *UserService) Activate(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.Activate(); err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// revoke logs rather than fails: the change is already saved and the old
// tokens expire on their own.
func (s *UserService) revoke(ctx context.Context, userID uuid.UUID) {
	if s.blacklist == nil {
		return
	}
	if err := s.blacklist.RevokeUser(ctx, userID.String(), s.revokeTTL); err != nil {
		s.logger.Error("Failed to revoke user tokens", zap.String("user_id", userID.String()), zap.Error(err))
	}
}
