package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sibarkumen/backend/internal/domain/shared"
)

// ApprovalStatus represents the status of an SPPB
type ApprovalStatus string

const (
	ApprovalIssued      ApprovalStatus = "ISSUED"
	ApprovalDistributed ApprovalStatus = "DISTRIBUTED"
)

// ApprovalLine is one approved item on an SPPB.
type ApprovalLine struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ApprovalID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	RequestedQty decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ApprovedQty  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (ApprovalLine) TableName() string {
	return "approval_lines"
}

// Approval is a Surat Perintah Penyaluran Barang: the order to hand out
// goods approved against an SPB.
type Approval struct {
	shared.BaseAggregateRoot
	Number        string         `gorm:"column:document_number;type:varchar(100);not null;uniqueIndex"`
	Date          time.Time      `gorm:"column:document_date;type:date;not null;index"`
	RequisitionID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	EmployeeID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Note          string         `gorm:"type:text"`
	Status        ApprovalStatus `gorm:"type:varchar(20);not null;index"`
	ApprovedBy    uuid.UUID      `gorm:"type:uuid;not null"`
	Lines         []ApprovalLine `gorm:"foreignKey:ApprovalID"`
}

// TableName returns the table name for GORM
func (Approval) TableName() string {
	return "approvals"
}

// NewApproval approves a pending requisition. approved maps item IDs to the
// approved quantity; items left out are not handed out.
func NewApproval(req *Requisition, date time.Time, approved map[uuid.UUID]decimal.Decimal, note string, by uuid.UUID) (*Approval, error) {
	if req == nil {
		return nil, shared.NewDomainError("INVALID_REQUISITION", "Requisition is required")
	}
	if len(approved) == 0 {
		return nil, shared.NewDomainError("NO_LINES", "At least one item must be approved")
	}
	if date.Before(req.Date) {
		return nil, shared.NewDomainError("INVALID_DATE", "Approval cannot be dated before the requisition")
	}

	a := &Approval{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Date:              date,
		RequisitionID:     req.ID,
		EmployeeID:        req.EmployeeID,
		Note:              strings.TrimSpace(note),
		Status:            ApprovalIssued,
		ApprovedBy:        by,
	}
	// Follow requisition line order so printouts match the SPB.
	for _, line := range req.Lines {
		qty, ok := approved[line.ItemID]
		if !ok {
			continue
		}
		if !qty.IsPositive() {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Approved quantity must be positive")
		}
		if qty.GreaterThan(line.Quantity) {
			return nil, shared.NewDomainError("INVALID_QUANTITY",
				fmt.Sprintf("Approved quantity %s exceeds requested %s", qty, line.Quantity))
		}
		a.Lines = append(a.Lines, ApprovalLine{
			ID:           uuid.New(),
			ApprovalID:   a.ID,
			ItemID:       line.ItemID,
			RequestedQty: line.Quantity,
			ApprovedQty:  qty,
		})
	}
	if len(a.Lines) != len(approved) {
		return nil, shared.NewDomainError("INVALID_ITEM", "Approved items must appear on the requisition")
	}

	if err := req.Approve(); err != nil {
		return nil, err
	}
	return a, nil
}

// AssignNumber sets the document number.
func (a *Approval) AssignNumber(number string) {
	a.Number = number
}

// MarkDistributed records that goods were handed out.
func (a *Approval) MarkDistributed() error {
	if a.Status != ApprovalIssued {
		return shared.NewDomainError("INVALID_STATE", "Goods for this approval were already distributed")
	}
	a.Status = ApprovalDistributed
	a.IncrementVersion()
	return nil
}
