package persistence

import (
	"context"

	appshared "github.com/sibarkumen/backend/internal/application/shared"
	"github.com/sibarkumen/backend/internal/domain/document"
	"github.com/sibarkumen/backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction. An error from fn, or a
// panic, rolls the transaction back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appshared.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories hands out repositories bound to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Items() inventory.ItemRepository {
	return NewGormItemRepository(r.tx)
}

func (r *gormTransactionalRepositories) Mutations() inventory.MutationRepository {
	return NewGormMutationRepository(r.tx)
}

func (r *gormTransactionalRepositories) Opnames() inventory.OpnameRepository {
	return NewGormOpnameRepository(r.tx)
}

func (r *gormTransactionalRepositories) Requisitions() document.RequisitionRepository {
	return NewGormRequisitionRepository(r.tx)
}

func (r *gormTransactionalRepositories) Approvals() document.ApprovalRepository {
	return NewGormApprovalRepository(r.tx)
}

func (r *gormTransactionalRepositories) Handovers() document.HandoverRepository {
	return NewGormHandoverRepository(r.tx)
}

func (r *gormTransactionalRepositories) Counter() document.Counter {
	return NewGormDocumentCounter(r.tx)
}

var (
	_ appshared.TransactionScope          = (*GormTransactionScope)(nil)
	_ appshared.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
