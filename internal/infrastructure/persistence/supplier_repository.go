package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/sibarkumen/backend/internal/domain/masterdata"
	"github.com/sibarkumen/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormSupplierRepository implements masterdata.SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier with its bank accounts, primary account first
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*masterdata.Supplier, error) {
	var supplier masterdata.Supplier
	err := r.db.WithContext(ctx).
		Preload("Accounts", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, created_at ASC")
		}).
		First(&supplier, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &supplier, nil
}

// FindAll lists suppliers without their accounts. Filters may carry active.
func (r *GormSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]masterdata.Supplier, int64, error) {
	filter = filter.Normalize("name")
	query := searchAny(r.db.WithContext(ctx).Model(&masterdata.Supplier{}), filter.Search, "name", "npwp", "contact_name")
	if active, ok := filter.Filters["active"]; ok {
		query = query.Where("active = ?", active)
	}
	var out []masterdata.Supplier
	total, err := paginate(query, filter, &out)
	return out, total, err
}

// Save creates or updates the supplier row only; accounts go through SaveAccounts
func (r *GormSupplierRepository) Save(ctx context.Context, supplier *masterdata.Supplier) error {
	return translate(r.db.WithContext(ctx).Omit("Accounts").Save(supplier).Error)
}

// Delete removes a supplier and its bank accounts
func (r *GormSupplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&masterdata.BankAccount{}, "supplier_id = ?", id).Error; err != nil {
			return err
		}
		return deleteByID(ctx, tx, &masterdata.Supplier{}, id)
	})
}

// Count returns the number of suppliers
func (r *GormSupplierRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&masterdata.Supplier{}).Count(&n).Error
	return n, err
}

// FindAccounts returns the supplier's bank accounts, primary first
func (r *GormSupplierRepository) FindAccounts(ctx context.Context, supplierID uuid.UUID) ([]masterdata.BankAccount, error) {
	var accounts []masterdata.BankAccount
	err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("is_primary DESC, created_at ASC").
		Find(&accounts).Error
	return accounts, err
}

// SaveAccounts upserts accounts in one transaction. Non-primary accounts are
// written first so the one-primary-per-supplier index holds at every step.
func (r *GormSupplierRepository) SaveAccounts(ctx context.Context, accounts ...masterdata.BankAccount) error {
	if len(accounts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, primary := range []bool{false, true} {
			for i := range accounts {
				if accounts[i].IsPrimary != primary {
					continue
				}
				if err := tx.Save(&accounts[i]).Error; err != nil {
					return translate(err)
				}
			}
		}
		return nil
	})
}

// DeleteAccount deletes one account of the supplier
func (r *GormSupplierRepository) DeleteAccount(ctx context.Context, supplierID, accountID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&masterdata.BankAccount{}, "id = ? AND supplier_id = ?", accountID, supplierID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ masterdata.SupplierRepository = (*GormSupplierRepository)(nil)
