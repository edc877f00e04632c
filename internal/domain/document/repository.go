package document

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sibarkumen/backend/internal/domain/shared"
)

// RequisitionRepository defines the interface for SPB persistence
type RequisitionRepository interface {
	// FindByID loads the SPB with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*Requisition, error)
	// FindAll lists SPBs; Filters may carry status and employee_id
	FindAll(ctx context.Context, filter shared.Filter) ([]Requisition, int64, error)
	// Create inserts a new SPB and its lines
	Create(ctx context.Context, r *Requisition) error
	// Update saves header changes, checking the version
	Update(ctx context.Context, r *Requisition) error
}

// ApprovalRepository defines the interface for SPPB persistence
type ApprovalRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Approval, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Approval, int64, error)
	Create(ctx context.Context, a *Approval) error
	Update(ctx context.Context, a *Approval) error
}

// HandoverRepository defines the interface for BAST persistence
type HandoverRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Handover, error)
	// FindAll lists handovers of one direction
	FindAll(ctx context.Context, dir Direction, filter shared.Filter) ([]Handover, int64, error)
	Create(ctx context.Context, h *Handover) error
	// UpdateAttachment stores the scan key of a handover
	UpdateAttachment(ctx context.Context, id uuid.UUID, key string) error
}

// Counter extends RecordCounter with the per-year counts used on the dashboard.
type Counter interface {
	RecordCounter
	CountDocumentsSince(ctx context.Context, t Type, since time.Time) (int64, error)
	// NumberTaken reports whether number is stored on any document sharing
	// t's table, whatever its direction.
	NumberTaken(ctx context.Context, t Type, number string) (bool, error)
}
