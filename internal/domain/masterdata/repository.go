package masterdata

import (
	"context"

	"github.com/google/uuid"
	"github.com/sibarkumen/backend/internal/domain/shared"
)

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Category, int64, error)
	ExistsByCode(ctx context.Context, code string, exclude uuid.UUID) (bool, error)
	Save(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UnitRepository defines the interface for unit persistence
type UnitRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Unit, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Unit, int64, error)
	ExistsByName(ctx context.Context, name string, exclude uuid.UUID) (bool, error)
	Save(ctx context.Context, unit *Unit) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PositionRepository defines the interface for position persistence
type PositionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Position, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Position, int64, error)
	ExistsByName(ctx context.Context, name string, exclude uuid.UUID) (bool, error)
	// IsAssigned reports whether any employee has ever held the position
	IsAssigned(ctx context.Context, id uuid.UUID) (bool, error)
	Save(ctx context.Context, position *Position) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SupplierRepository defines the interface for supplier persistence.
// Bank accounts are owned by their supplier and persisted through it.
type SupplierRepository interface {
	// FindByID loads the supplier with its bank accounts
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Supplier, int64, error)
	Save(ctx context.Context, supplier *Supplier) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)

	FindAccounts(ctx context.Context, supplierID uuid.UUID) ([]BankAccount, error)
	SaveAccounts(ctx context.Context, accounts ...BankAccount) error
	DeleteAccount(ctx context.Context, supplierID, accountID uuid.UUID) error
}

// EmployeeRepository defines the interface for employee persistence
type EmployeeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Employee, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Employee, int64, error)
	ExistsByNIP(ctx context.Context, nip string, exclude uuid.UUID) (bool, error)
	Save(ctx context.Context, employee *Employee) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)

	// CurrentAssignment returns the open assignment, or nil when there is none
	CurrentAssignment(ctx context.Context, employeeID uuid.UUID) (*Assignment, error)
	// Assignments returns the assignment history, newest first
	Assignments(ctx context.Context, employeeID uuid.UUID) ([]Assignment, error)
	SaveAssignments(ctx context.Context, assignments ...*Assignment) error
}
