package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sibarkumen/backend/internal/domain/inventory"
	"github.com/sibarkumen/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormItemRepository implements inventory.ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID finds an item by ID
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Item, error) {
	var item inventory.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

// FindByIDs finds items by ID, ordered by code
func (r *GormItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]inventory.Item, error) {
	return r.findByIDs(r.db.WithContext(ctx), ids)
}

// FindByIDsForUpdate locks the rows (SELECT ... FOR UPDATE) until the
// surrounding transaction ends. Rows are locked in code order so concurrent
// documents touching the same items cannot deadlock.
func (r *GormItemRepository) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]inventory.Item, error) {
	return r.findByIDs(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), ids)
}

func (r *GormItemRepository) findByIDs(db *gorm.DB, ids []uuid.UUID) ([]inventory.Item, error) {
	if len(ids) == 0 {
		return []inventory.Item{}, nil
	}
	var items []inventory.Item
	if err := db.Where("id IN ?", ids).Order("code ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindAll lists items. Filters: category_id, unit_id, active, low_stock.
func (r *GormItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.Item, int64, error) {
	filter = filter.Normalize("code", "name", "stock", "updated_at")
	query := searchAny(r.db.WithContext(ctx).Model(&inventory.Item{}), filter.Search, "code", "name")

	if v, ok := filter.Filters["category_id"]; ok {
		query = query.Where("category_id = ?", v)
	}
	if v, ok := filter.Filters["unit_id"]; ok {
		query = query.Where("unit_id = ?", v)
	}
	if v, ok := filter.Filters["active"]; ok {
		query = query.Where("active = ?", v)
	}
	if v, ok := filter.Filters["low_stock"].(bool); ok && v {
		query = query.Where("stock <= min_stock")
	}

	var items []inventory.Item
	total, err := paginate(query, filter, &items)
	return items, total, err
}

// FindActive returns every active item ordered by code
func (r *GormItemRepository) FindActive(ctx context.Context) ([]inventory.Item, error) {
	var items []inventory.Item
	err := r.db.WithContext(ctx).Where("active = ?", true).Order("code ASC").Find(&items).Error
	return items, err
}

// Search is the autocomplete query: code prefix matches rank before name matches
func (r *GormItemRepository) Search(ctx context.Context, q string, limit int) ([]inventory.Item, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []inventory.Item{}, nil
	}
	if limit <= 0 {
		limit = 10
	}
	prefix := strings.TrimSuffix(likePattern(q), "%")[1:] + "%"

	var items []inventory.Item
	err := searchAny(r.db.WithContext(ctx).Model(&inventory.Item{}), q, "code", "name").
		Where("active = ?", true).
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:  "CASE WHEN LOWER(code) LIKE ? ESCAPE '\\' THEN 0 ELSE 1 END, code ASC",
			Vars: []any{prefix},
		}}).
		Limit(limit).
		Find(&items).Error
	return items, err
}

// ExistsByCode checks if a code is taken by another item
func (r *GormItemRepository) ExistsByCode(ctx context.Context, code string, exclude uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&inventory.Item{}).
		Where("code = ? AND id <> ?", strings.ToUpper(strings.TrimSpace(code)), exclude))
}

func (r *GormItemRepository) ExistsByCategory(ctx context.Context, categoryID uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&inventory.Item{}).Where("category_id = ?", categoryID))
}

func (r *GormItemRepository) ExistsByUnit(ctx context.Context, unitID uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&inventory.Item{}).Where("unit_id = ?", unitID))
}

func (r *GormItemRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&inventory.Item{}).Count(&n).Error
	return n, err
}

func (r *GormItemRepository) CountLowStock(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&inventory.Item{}).
		Where("active = ? AND stock <= min_stock", true).
		Count(&n).Error
	return n, err
}

// Save creates or updates an item
func (r *GormItemRepository) Save(ctx context.Context, item *inventory.Item) error {
	return translate(r.db.WithContext(ctx).Save(item).Error)
}

// SaveAll writes the stock of several locked items
func (r *GormItemRepository) SaveAll(ctx context.Context, items []*inventory.Item) error {
	for _, item := range items {
		result := r.db.WithContext(ctx).
			Model(&inventory.Item{}).
			Where("id = ?", item.ID).
			Updates(map[string]any{
				"stock":      item.Stock,
				"version":    item.Version,
				"updated_at": item.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
	}
	return nil
}

// Delete deletes an item
func (r *GormItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &inventory.Item{}, id)
}

var _ inventory.ItemRepository = (*GormItemRepository)(nil)
