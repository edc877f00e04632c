package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sibarkumen/backend/internal/domain/masterdata"
	"github.com/sibarkumen/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// deleteByID deletes one row of model and reports ErrNotFound when nothing matched.
func deleteByID(ctx context.Context, db *gorm.DB, model any, id uuid.UUID) error {
	result := db.WithContext(ctx).Delete(model, "id = ?", id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormCategoryRepository implements masterdata.CategoryRepository
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*masterdata.Category, error) {
	var c masterdata.Category
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *GormCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]masterdata.Category, int64, error) {
	filter = filter.Normalize("code", "name")
	query := searchAny(r.db.WithContext(ctx).Model(&masterdata.Category{}), filter.Search, "code", "name")
	var out []masterdata.Category
	total, err := paginate(query, filter, &out)
	return out, total, err
}

func (r *GormCategoryRepository) ExistsByCode(ctx context.Context, code string, exclude uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&masterdata.Category{}).
		Where("code = ? AND id <> ?", strings.ToUpper(strings.TrimSpace(code)), exclude))
}

func (r *GormCategoryRepository) Save(ctx context.Context, c *masterdata.Category) error {
	return translate(r.db.WithContext(ctx).Save(c).Error)
}

func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &masterdata.Category{}, id)
}

// GormUnitRepository implements masterdata.UnitRepository
type GormUnitRepository struct {
	db *gorm.DB
}

// NewGormUnitRepository creates a new GormUnitRepository
func NewGormUnitRepository(db *gorm.DB) *GormUnitRepository {
	return &GormUnitRepository{db: db}
}

func (r *GormUnitRepository) FindByID(ctx context.Context, id uuid.UUID) (*masterdata.Unit, error) {
	var u masterdata.Unit
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *GormUnitRepository) FindAll(ctx context.Context, filter shared.Filter) ([]masterdata.Unit, int64, error) {
	filter = filter.Normalize("name")
	query := searchAny(r.db.WithContext(ctx).Model(&masterdata.Unit{}), filter.Search, "name")
	var out []masterdata.Unit
	total, err := paginate(query, filter, &out)
	return out, total, err
}

// ExistsByName compares names case-insensitively
func (r *GormUnitRepository) ExistsByName(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&masterdata.Unit{}).
		Where("LOWER(name) = ? AND id <> ?", strings.ToLower(strings.TrimSpace(name)), exclude))
}

func (r *GormUnitRepository) Save(ctx context.Context, u *masterdata.Unit) error {
	return translate(r.db.WithContext(ctx).Save(u).Error)
}

func (r *GormUnitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &masterdata.Unit{}, id)
}

// GormPositionRepository implements masterdata.PositionRepository
type GormPositionRepository struct {
	db *gorm.DB
}

// NewGormPositionRepository creates a new GormPositionRepository
func NewGormPositionRepository(db *gorm.DB) *GormPositionRepository {
	return &GormPositionRepository{db: db}
}

func (r *GormPositionRepository) FindByID(ctx context.Context, id uuid.UUID) (*masterdata.Position, error) {
	var p masterdata.Position
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *GormPositionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]masterdata.Position, int64, error) {
	filter = filter.Normalize("name")
	query := searchAny(r.db.WithContext(ctx).Model(&masterdata.Position{}), filter.Search, "name")
	var out []masterdata.Position
	total, err := paginate(query, filter, &out)
	return out, total, err
}

// ExistsByName compares names case-insensitively
func (r *GormPositionRepository) ExistsByName(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&masterdata.Position{}).
		Where("LOWER(name) = ? AND id <> ?", strings.ToLower(strings.TrimSpace(name)), exclude))
}

func (r *GormPositionRepository) IsAssigned(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&masterdata.Assignment{}).Where("position_id = ?", id))
}

func (r *GormPositionRepository) Save(ctx context.Context, p *masterdata.Position) error {
	return translate(r.db.WithContext(ctx).Save(p).Error)
}

func (r *GormPositionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &masterdata.Position{}, id)
}

var (
	_ masterdata.CategoryRepository = (*GormCategoryRepository)(nil)
	_ masterdata.UnitRepository     = (*GormUnitRepository)(nil)
	_ masterdata.PositionRepository = (*GormPositionRepository)(nil)
)
