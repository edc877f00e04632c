package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/sibarkumen/backend/internal/domain/shared"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by its normalized email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindAll lists users; Search matches name or email
	FindAll(ctx context.Context, filter shared.Filter) ([]User, int64, error)

	// ExistsByEmail checks if an email is already registered
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Save creates or updates a user
	Save(ctx context.Context, user *User) error
}
