package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sibarkumen/backend/internal/domain/masterdata"
	"github.com/sibarkumen/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormEmployeeRepository implements masterdata.EmployeeRepository using GORM
type GormEmployeeRepository struct {
	db *gorm.DB
}

// NewGormEmployeeRepository creates a new GormEmployeeRepository
func NewGormEmployeeRepository(db *gorm.DB) *GormEmployeeRepository {
	return &GormEmployeeRepository{db: db}
}

func (r *GormEmployeeRepository) FindByID(ctx context.Context, id uuid.UUID) (*masterdata.Employee, error) {
	var e masterdata.Employee
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

// FindAll lists employees; Search matches NIP or name. Filters may carry active.
func (r *GormEmployeeRepository) FindAll(ctx context.Context, filter shared.Filter) ([]masterdata.Employee, int64, error) {
	filter = filter.Normalize("name", "nip")
	query := searchAny(r.db.WithContext(ctx).Model(&masterdata.Employee{}), filter.Search, "nip", "name")
	if active, ok := filter.Filters["active"]; ok {
		query = query.Where("active = ?", active)
	}
	var out []masterdata.Employee
	total, err := paginate(query, filter, &out)
	return out, total, err
}

func (r *GormEmployeeRepository) ExistsByNIP(ctx context.Context, nip string, exclude uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&masterdata.Employee{}).
		Where("nip = ? AND id <> ?", strings.ReplaceAll(nip, " ", ""), exclude))
}

func (r *GormEmployeeRepository) Save(ctx context.Context, e *masterdata.Employee) error {
	return translate(r.db.WithContext(ctx).Save(e).Error)
}

// Delete removes an employee and the assignment history
func (r *GormEmployeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&masterdata.Assignment{}, "employee_id = ?", id).Error; err != nil {
			return err
		}
		return deleteByID(ctx, tx, &masterdata.Employee{}, id)
	})
}

func (r *GormEmployeeRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&masterdata.Employee{}).Count(&n).Error
	return n, err
}

func (r *GormEmployeeRepository) CurrentAssignment(ctx context.Context, employeeID uuid.UUID) (*masterdata.Assignment, error) {
	var a masterdata.Assignment
	err := r.db.WithContext(ctx).
		Preload("Position").
		Where("employee_id = ? AND end_date IS NULL", employeeID).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormEmployeeRepository) Assignments(ctx context.Context, employeeID uuid.UUID) ([]masterdata.Assignment, error) {
	var out []masterdata.Assignment
	err := r.db.WithContext(ctx).
		Preload("Position").
		Where("employee_id = ?", employeeID).
		Order("start_date DESC, created_at DESC").
		Find(&out).Error
	return out, err
}

// SaveAssignments writes a closed assignment and its successor together.
// Closed rows go first so the one-open-assignment index holds at every step.
func (r *GormEmployeeRepository) SaveAssignments(ctx context.Context, assignments ...*masterdata.Assignment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, open := range []bool{false, true} {
			for _, a := range assignments {
				if a == nil || a.IsOpen() != open {
					continue
				}
				if err := tx.Omit("Position").Save(a).Error; err != nil {
					return translate(err)
				}
			}
		}
		return nil
	})
}

var _ masterdata.EmployeeRepository = (*GormEmployeeRepository)(nil)
