package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/sibarkumen/backend/internal/domain/shared"
)

// ItemRepository defines the interface for item persistence
type ItemRepository interface {
	// FindByID finds an item by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)

	// FindByIDs finds items by ID; missing IDs are simply absent from the result
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Item, error)

	// FindByIDsForUpdate is FindByIDs with row locks, for use inside a transaction
	FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]Item, error)

	// FindAll lists items; Filters may carry category_id, unit_id, active and low_stock
	FindAll(ctx context.Context, filter shared.Filter) ([]Item, int64, error)

	// FindActive returns every active item ordered by code
	FindActive(ctx context.Context) ([]Item, error)

	// Search matches code or name case-insensitively
	Search(ctx context.Context, query string, limit int) ([]Item, error)

	// ExistsByCode checks if a code is taken by an item other than exclude
	ExistsByCode(ctx context.Context, code string, exclude uuid.UUID) (bool, error)

	// ExistsByCategory reports whether any item uses the category
	ExistsByCategory(ctx context.Context, categoryID uuid.UUID) (bool, error)

	// ExistsByUnit reports whether any item uses the unit
	ExistsByUnit(ctx context.Context, unitID uuid.UUID) (bool, error)

	// Count returns the number of items
	Count(ctx context.Context) (int64, error)

	// CountLowStock returns the number of active items at or below minimum stock
	CountLowStock(ctx context.Context) (int64, error)

	// Save creates or updates an item
	Save(ctx context.Context, item *Item) error

	// SaveAll updates items previously loaded with FindByIDsForUpdate
	SaveAll(ctx context.Context, items []*Item) error

	// Delete deletes an item
	Delete(ctx context.Context, id uuid.UUID) error
}

// MutationRepository stores the append-only stock history
type MutationRepository interface {
	Append(ctx context.Context, mutations ...*Mutation) error
	FindAll(ctx context.Context, filter MutationFilter) ([]Mutation, int64, error)
	// Latest returns the most recent mutations across all items
	Latest(ctx context.Context, limit int) ([]Mutation, error)
	// ExistsForItem reports whether the item has any history
	ExistsForItem(ctx context.Context, itemID uuid.UUID) (bool, error)
}

// OpnameRepository defines the interface for stock opname persistence
type OpnameRepository interface {
	// FindByID loads the opname with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*StockOpname, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]StockOpname, int64, error)
	// HasDraft reports whether a draft opname is open
	HasDraft(ctx context.Context) (bool, error)
	Save(ctx context.Context, opname *StockOpname) error
}
