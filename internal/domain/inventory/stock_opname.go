package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sibarkumen/backend/internal/domain/shared"
)

// OpnameStatus represents the status of a stock opname session
type OpnameStatus string

const (
	OpnameStatusDraft     OpnameStatus = "DRAFT"
	OpnameStatusCompleted OpnameStatus = "COMPLETED"
	OpnameStatusCancelled OpnameStatus = "CANCELLED"
)

// CanTransitionTo checks if the status can transition to the target status
func (s OpnameStatus) CanTransitionTo(target OpnameStatus) bool {
	return s == OpnameStatusDraft && (target == OpnameStatusCompleted || target == OpnameStatusCancelled)
}

// OpnameLine is one item counted in a stock opname.
type OpnameLine struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey"`
	OpnameID  uuid.UUID        `gorm:"type:uuid;not null;index"`
	ItemID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	ItemCode  string           `gorm:"type:varchar(50);not null"`
	ItemName  string           `gorm:"type:varchar(200);not null"`
	SystemQty decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	ActualQty *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Remark    string           `gorm:"type:text"`
	CreatedAt time.Time        `gorm:"not null"`
	UpdatedAt time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OpnameLine) TableName() string {
	return "stock_opname_lines"
}

// Counted reports whether the actual quantity has been recorded.
func (l *OpnameLine) Counted() bool {
	return l.ActualQty != nil
}

// Difference returns actual minus system quantity, zero when uncounted.
func (l *OpnameLine) Difference() decimal.Decimal {
	if l.ActualQty == nil {
		return decimal.Zero
	}
	return l.ActualQty.Sub(l.SystemQty)
}

// StockOpname is a physical stock count. Creating it snapshots the system
// stock of each item; completing it adjusts stock to the counted values.
type StockOpname struct {
	shared.BaseAggregateRoot
	OpnameDate  time.Time    `gorm:"type:date;not null;index"`
	Status      OpnameStatus `gorm:"type:varchar(20);not null;index"`
	Note        string       `gorm:"type:text"`
	CreatedBy   uuid.UUID    `gorm:"type:uuid;not null"`
	CompletedAt *time.Time
	CompletedBy *uuid.UUID   `gorm:"type:uuid"`
	Lines       []OpnameLine `gorm:"foreignKey:OpnameID"`
}

// TableName returns the table name for GORM
func (StockOpname) TableName() string {
	return "stock_opnames"
}

// NewStockOpname opens a draft count over items.
func NewStockOpname(date time.Time, note string, createdBy uuid.UUID, items []Item) (*StockOpname, error) {
	if len(items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Stock opname needs at least one item")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CREATOR", "Creator is required")
	}
	o := &StockOpname{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OpnameDate:        date,
		Status:            OpnameStatusDraft,
		Note:              note,
		CreatedBy:         createdBy,
		Lines:             make([]OpnameLine, 0, len(items)),
	}
	seen := make(map[uuid.UUID]bool, len(items))
	for _, it := range items {
		if seen[it.ID] {
			return nil, shared.NewDomainError("DUPLICATE_ITEM", "Item "+it.Code+" appears twice")
		}
		seen[it.ID] = true
		o.Lines = append(o.Lines, OpnameLine{
			ID:        uuid.New(),
			OpnameID:  o.ID,
			ItemID:    it.ID,
			ItemCode:  it.Code,
			ItemName:  it.Name,
			SystemQty: it.Stock,
			CreatedAt: o.CreatedAt,
			UpdatedAt: o.CreatedAt,
		})
	}
	return o, nil
}

// RecordCount stores the counted quantity of an item.
func (o *StockOpname) RecordCount(itemID uuid.UUID, actual decimal.Decimal, remark string) error {
	if o.Status != OpnameStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Counts can only be recorded on a draft stock opname")
	}
	if actual.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Actual quantity cannot be negative")
	}
	for i := range o.Lines {
		if o.Lines[i].ItemID == itemID {
			o.Lines[i].ActualQty = &actual
			o.Lines[i].Remark = remark
			o.Lines[i].UpdatedAt = time.Now()
			o.IncrementVersion()
			return nil
		}
	}
	return shared.NewDomainError("NOT_FOUND", "Item is not part of this stock opname")
}

// CountedLines returns the number of counted lines.
func (o *StockOpname) CountedLines() int {
	n := 0
	for i := range o.Lines {
		if o.Lines[i].Counted() {
			n++
		}
	}
	return n
}

// Complete closes the opname and adjusts every item whose count differs.
// items must hold the current state of every line's item; they are
// modified in place and the resulting mutations returned.
func (o *StockOpname) Complete(by uuid.UUID, items map[uuid.UUID]*Item) ([]*Mutation, error) {
	if !o.Status.CanTransitionTo(OpnameStatusCompleted) {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete a %s stock opname", o.Status))
	}
	if counted := o.CountedLines(); counted != len(o.Lines) {
		return nil, shared.NewDomainError("INCOMPLETE_COUNT",
			fmt.Sprintf("Not all items have been counted (%d/%d)", counted, len(o.Lines)))
	}

	now := time.Now()
	var mutations []*Mutation
	for i := range o.Lines {
		line := &o.Lines[i]
		item, ok := items[line.ItemID]
		if !ok {
			return nil, shared.NewDomainError("NOT_FOUND", "Item "+line.ItemCode+" not found")
		}
		m, err := item.AdjustTo(*line.ActualQty, Reference{
			Type: RefOpname,
			ID:   o.ID,
			Note: line.Remark,
			By:   by,
			At:   now,
		})
		if err != nil {
			return nil, err
		}
		if m != nil {
			mutations = append(mutations, m)
		}
	}

	o.Status = OpnameStatusCompleted
	o.CompletedAt = &now
	o.CompletedBy = &by
	o.IncrementVersion()
	return mutations, nil
}

// Cancel abandons a draft opname.
func (o *StockOpname) Cancel() error {
	if !o.Status.CanTransitionTo(OpnameStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel a %s stock opname", o.Status))
	}
	o.Status = OpnameStatusCancelled
	o.IncrementVersion()
	return nil
}
