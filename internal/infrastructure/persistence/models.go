package persistence

import (
	"github.com/sibarkumen/backend/internal/domain/document"
	"github.com/sibarkumen/backend/internal/domain/identity"
	"github.com/sibarkumen/backend/internal/domain/inventory"
	"github.com/sibarkumen/backend/internal/domain/masterdata"
)

// Models lists every persisted type. The SQL migrations are the schema of
// record; AutoMigrate over Models is only used to build test databases.
func Models() []any {
	return []any{
		&identity.User{},
		&masterdata.Category{},
		&masterdata.Unit{},
		&masterdata.Position{},
		&masterdata.Supplier{},
		&masterdata.BankAccount{},
		&masterdata.Employee{},
		&masterdata.Assignment{},
		&inventory.Item{},
		&inventory.Mutation{},
		&inventory.StockOpname{},
		&inventory.OpnameLine{},
		&document.Requisition{},
		&document.RequisitionLine{},
		&document.Approval{},
		&document.ApprovalLine{},
		&document.Handover{},
		&document.HandoverLine{},
	}
}
