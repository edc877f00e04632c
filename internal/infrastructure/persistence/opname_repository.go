package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/sibarkumen/backend/internal/domain/inventory"
	"github.com/sibarkumen/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOpnameRepository implements inventory.OpnameRepository using GORM
type GormOpnameRepository struct {
	db *gorm.DB
}

// NewGormOpnameRepository creates a new GormOpnameRepository
func NewGormOpnameRepository(db *gorm.DB) *GormOpnameRepository {
	return &GormOpnameRepository{db: db}
}

// FindByID loads the opname and its lines ordered by item code
func (r *GormOpnameRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockOpname, error) {
	var o inventory.StockOpname
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("item_code ASC") }).
		First(&o, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

// FindAll lists opname headers. Filters may carry status.
func (r *GormOpnameRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockOpname, int64, error) {
	filter = filter.Normalize("opname_date", "status")
	query := r.db.WithContext(ctx).Model(&inventory.StockOpname{})
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	var out []inventory.StockOpname
	total, err := paginate(query, filter, &out)
	return out, total, err
}

func (r *GormOpnameRepository) HasDraft(ctx context.Context) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&inventory.StockOpname{}).
		Where("status = ?", inventory.OpnameStatusDraft))
}

// Save upserts the header and every line
func (r *GormOpnameRepository) Save(ctx context.Context, o *inventory.StockOpname) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(o).Error; err != nil {
			return translate(err)
		}
		if len(o.Lines) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"actual_qty", "remark", "updated_at"}),
		}).Create(&o.Lines).Error
	})
}

var _ inventory.OpnameRepository = (*GormOpnameRepository)(nil)
