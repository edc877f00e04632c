package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sibarkumen/backend/internal/domain/shared"
)

// RequisitionStatus represents the status of an SPB
type RequisitionStatus string

const (
	RequisitionPending  RequisitionStatus = "PENDING"
	RequisitionApproved RequisitionStatus = "APPROVED"
	RequisitionRejected RequisitionStatus = "REJECTED"
)

// LineInput is a requested or delivered quantity of an item.
type LineInput struct {
	ItemID    uuid.UUID
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Note      string
}

// RequisitionLine is one requested item on an SPB.
type RequisitionLine struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RequisitionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Note          string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (RequisitionLine) TableName() string {
	return "requisition_lines"
}

// Requisition is a Surat Permintaan Barang: an employee's request for goods.
type Requisition struct {
	shared.BaseAggregateRoot
	Number       string            `gorm:"column:document_number;type:varchar(100);not null;uniqueIndex"`
	Date         time.Time         `gorm:"column:document_date;type:date;not null;index"`
	EmployeeID   uuid.UUID         `gorm:"type:uuid;not null;index"`
	Purpose      string            `gorm:"type:text"`
	Status       RequisitionStatus `gorm:"type:varchar(20);not null;index"`
	RejectReason string            `gorm:"type:text"`
	CreatedBy    uuid.UUID         `gorm:"type:uuid;not null"`
	Lines        []RequisitionLine `gorm:"foreignKey:RequisitionID"`
}

// TableName returns the table name for GORM
func (Requisition) TableName() string {
	return "requisitions"
}

// NewRequisition creates a pending SPB without a number.
func NewRequisition(date time.Time, employeeID uuid.UUID, purpose string, createdBy uuid.UUID, lines []LineInput) (*Requisition, error) {
	if employeeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_EMPLOYEE", "Requesting employee is required")
	}
	if err := validateLines(lines, false); err != nil {
		return nil, err
	}

	r := &Requisition{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Date:              date,
		EmployeeID:        employeeID,
		Purpose:           strings.TrimSpace(purpose),
		Status:            RequisitionPending,
		CreatedBy:         createdBy,
	}
	for _, l := range lines {
		r.Lines = append(r.Lines, RequisitionLine{
			ID:            uuid.New(),
			RequisitionID: r.ID,
			ItemID:        l.ItemID,
			Quantity:      l.Quantity,
			Note:          strings.TrimSpace(l.Note),
		})
	}
	return r, nil
}

// AssignNumber sets the document number.
func (r *Requisition) AssignNumber(number string) {
	r.Number = number
}

// Line returns the line for an item.
func (r *Requisition) Line(itemID uuid.UUID) (*RequisitionLine, bool) {
	for i := range r.Lines {
		if r.Lines[i].ItemID == itemID {
			return &r.Lines[i], true
		}
	}
	return nil, false
}

// Approve marks the SPB approved.
func (r *Requisition) Approve() error {
	if r.Status != RequisitionPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve a %s requisition", r.Status))
	}
	r.Status = RequisitionApproved
	r.IncrementVersion()
	return nil
}

// Reject marks the SPB rejected.
func (r *Requisition) Reject(reason string) error {
	if r.Status != RequisitionPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject a %s requisition", r.Status))
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}
	r.Status = RequisitionRejected
	r.RejectReason = reason
	r.IncrementVersion()
	return nil
}

func validateLines(lines []LineInput, priced bool) error {
	if len(lines) == 0 {
		return shared.NewDomainError("NO_LINES", "At least one item is required")
	}
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, l := range lines {
		if l.ItemID == uuid.Nil {
			return shared.NewDomainError("INVALID_ITEM", "Item is required on every line")
		}
		if seen[l.ItemID] {
			return shared.NewDomainError("DUPLICATE_ITEM", "An item can only appear once")
		}
		seen[l.ItemID] = true
		if !l.Quantity.IsPositive() {
			return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
		}
		if priced && l.UnitPrice.IsNegative() {
			return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
		}
	}
	return nil
}
