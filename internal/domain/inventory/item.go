// Package inventory models goods (barang), their stock level and the
// mutations and stock opname sessions that change it.
package inventory

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sibarkumen/backend/internal/domain/shared"
)

// Item is a stocked good. Stock only changes through Receive, Issue and
// AdjustTo so every change leaves a Mutation behind.
type Item struct {
	shared.BaseAggregateRoot
	Code       string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name       string          `gorm:"type:varchar(200);not null;index"`
	CategoryID uuid.UUID       `gorm:"type:uuid;not null;index"`
	UnitID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Stock      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MinStock   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Active     bool            `gorm:"not null;default:true"`
	Notes      string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "items"
}

// ItemDetails are the editable item fields.
type ItemDetails struct {
	Code       string
	Name       string
	CategoryID uuid.UUID
	UnitID     uuid.UUID
	MinStock   decimal.Decimal
	Notes      string
}

// NewItem creates an active item with zero stock.
func NewItem(d ItemDetails) (*Item, error) {
	item := &Item{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Stock:             decimal.Zero,
		Active:            true,
	}
	if err := item.apply(d); err != nil {
		return nil, err
	}
	return item, nil
}

// Update replaces the item's details. Stock is untouched.
func (i *Item) Update(d ItemDetails) error {
	if err := i.apply(d); err != nil {
		return err
	}
	i.IncrementVersion()
	return nil
}

// SetActive toggles whether the item can be used on new documents.
func (i *Item) SetActive(active bool) {
	i.Active = active
	i.IncrementVersion()
}

// IsLowStock reports whether stock is at or below the minimum.
func (i *Item) IsLowStock() bool {
	return i.Stock.LessThanOrEqual(i.MinStock)
}

// Receive adds qty to stock.
func (i *Item) Receive(qty decimal.Decimal, ref Reference) (*Mutation, error) {
	if !qty.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	return i.change(MutationIn, qty, i.Stock.Add(qty), ref), nil
}

// Issue removes qty from stock. Stock never goes negative.
func (i *Item) Issue(qty decimal.Decimal, ref Reference) (*Mutation, error) {
	if !qty.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if i.Stock.LessThan(qty) {
		return nil, shared.NewDomainError("INSUFFICIENT_STOCK",
			"Insufficient stock for "+i.Code+": available "+i.Stock.String()+", requested "+qty.String())
	}
	return i.change(MutationOut, qty, i.Stock.Sub(qty), ref), nil
}

// AdjustTo sets stock to a counted quantity. It returns nil when the
// count matches the current stock.
func (i *Item) AdjustTo(counted decimal.Decimal, ref Reference) (*Mutation, error) {
	if counted.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Counted quantity cannot be negative")
	}
	if counted.Equal(i.Stock) {
		return nil, nil
	}
	return i.change(MutationAdjustment, counted.Sub(i.Stock).Abs(), counted, ref), nil
}

func (i *Item) change(t MutationType, qty, after decimal.Decimal, ref Reference) *Mutation {
	m := newMutation(i.ID, t, qty, i.Stock, after, ref)
	i.Stock = after
	i.IncrementVersion()
	return m
}

func (i *Item) apply(d ItemDetails) error {
	code := strings.ToUpper(strings.TrimSpace(d.Code))
	if code == "" {
		return shared.NewDomainError("INVALID_ITEM_CODE", "Item code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_ITEM_CODE", "Item code cannot exceed 50 characters")
	}
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_ITEM_NAME", "Item name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_ITEM_NAME", "Item name cannot exceed 200 characters")
	}
	if d.CategoryID == uuid.Nil {
		return shared.NewDomainError("INVALID_CATEGORY", "Category is required")
	}
	if d.UnitID == uuid.Nil {
		return shared.NewDomainError("INVALID_UNIT", "Unit is required")
	}
	if d.MinStock.IsNegative() {
		return shared.NewDomainError("INVALID_MIN_STOCK", "Minimum stock cannot be negative")
	}
	i.Code = code
	i.Name = name
	i.CategoryID = d.CategoryID
	i.UnitID = d.UnitID
	i.MinStock = d.MinStock
	i.Notes = strings.TrimSpace(d.Notes)
	return nil
}
