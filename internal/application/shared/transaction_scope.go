// Package shared holds application-layer contracts used by several services.
package shared

import (
	"context"

	"github.com/sibarkumen/backend/internal/domain/document"
	"github.com/sibarkumen/backend/internal/domain/inventory"
)

// TransactionScope runs a unit of work inside one database transaction.
// The transaction is rolled back when fn returns an error and committed
// otherwise.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories returns repositories bound to the current
// transaction. Everything that changes stock goes through here so the item
// rows, their mutations and the source document commit together.
type TransactionalRepositories interface {
	Items() inventory.ItemRepository
	Mutations() inventory.MutationRepository
	Opnames() inventory.OpnameRepository
	Requisitions() document.RequisitionRepository
	Approvals() document.ApprovalRepository
	Handovers() document.HandoverRepository
	// Counter counts documents as seen by the transaction
	Counter() document.Counter
}
