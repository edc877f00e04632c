package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/sibarkumen/backend/internal/domain/inventory"
	"github.com/sibarkumen/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormMutationRepository implements inventory.MutationRepository. Rows are
// only ever inserted.
type GormMutationRepository struct {
	db *gorm.DB
}

// NewGormMutationRepository creates a new GormMutationRepository
func NewGormMutationRepository(db *gorm.DB) *GormMutationRepository {
	return &GormMutationRepository{db: db}
}

// Append inserts mutations in one statement
func (r *GormMutationRepository) Append(ctx context.Context, mutations ...*inventory.Mutation) error {
	if len(mutations) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Item").Create(mutations).Error
}

// FindAll lists mutations newest first, with the item preloaded
func (r *GormMutationRepository) FindAll(ctx context.Context, filter inventory.MutationFilter) ([]inventory.Mutation, int64, error) {
	page := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "occurred_at",
	}.Normalize("occurred_at")

	query := r.db.WithContext(ctx).Model(&inventory.Mutation{})
	if filter.ItemID != nil {
		query = query.Where("item_id = ?", *filter.ItemID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.From != nil {
		query = query.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("occurred_at < ?", *filter.To)
	}

	var out []inventory.Mutation
	total, err := paginate(query, page, &out, "Item")
	return out, total, err
}

// Latest returns the most recent mutations across all items
func (r *GormMutationRepository) Latest(ctx context.Context, limit int) ([]inventory.Mutation, error) {
	var out []inventory.Mutation
	err := r.db.WithContext(ctx).
		Preload("Item").
		Order("occurred_at DESC, created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *GormMutationRepository) ExistsForItem(ctx context.Context, itemID uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&inventory.Mutation{}).Where("item_id = ?", itemID))
}

var _ inventory.MutationRepository = (*GormMutationRepository)(nil)
