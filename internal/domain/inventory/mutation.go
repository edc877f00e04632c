package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MutationType is the direction of a stock change.
type MutationType string

const (
	MutationIn         MutationType = "IN"
	MutationOut        MutationType = "OUT"
	MutationAdjustment MutationType = "ADJUSTMENT"
)

// IsValid checks if the type is a known MutationType
func (t MutationType) IsValid() bool {
	switch t {
	case MutationIn, MutationOut, MutationAdjustment:
		return true
	}
	return false
}

// Reference points at whatever caused a stock change.
type Reference struct {
	Type   string    // BAST_IN, BAST_OUT or OPNAME
	ID     uuid.UUID
	Number string
	Note   string
	By     uuid.UUID
	At     time.Time
}

// Reference types recorded on mutations.
const (
	RefHandoverIn  = "BAST_IN"
	RefHandoverOut = "BAST_OUT"
	RefOpname      = "OPNAME"
)

// Mutation is one immutable line of stock history.
type Mutation struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ItemID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type            MutationType    `gorm:"type:varchar(20);not null;index"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	StockBefore     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	StockAfter      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReferenceType   string          `gorm:"type:varchar(20);not null"`
	ReferenceID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ReferenceNumber string          `gorm:"type:varchar(100)"`
	Note            string          `gorm:"type:text"`
	CreatedBy       uuid.UUID       `gorm:"type:uuid"`
	OccurredAt      time.Time       `gorm:"not null;index"`
	CreatedAt       time.Time       `gorm:"not null"`
	Item            *Item           `gorm:"foreignKey:ItemID"`
}

// TableName returns the table name for GORM
func (Mutation) TableName() string {
	return "stock_mutations"
}

// Delta returns the signed change in stock.
func (m *Mutation) Delta() decimal.Decimal {
	return m.StockAfter.Sub(m.StockBefore)
}

func newMutation(itemID uuid.UUID, t MutationType, qty, before, after decimal.Decimal, ref Reference) *Mutation {
	now := time.Now()
	at := ref.At
	if at.IsZero() {
		at = now
	}
	return &Mutation{
		ID:              uuid.New(),
		ItemID:          itemID,
		Type:            t,
		Quantity:        qty,
		StockBefore:     before,
		StockAfter:      after,
		ReferenceType:   ref.Type,
		ReferenceID:     ref.ID,
		ReferenceNumber: ref.Number,
		Note:            ref.Note,
		CreatedBy:       ref.By,
		OccurredAt:      at,
		CreatedAt:       now,
	}
}

// MutationFilter narrows mutation history queries.
type MutationFilter struct {
	ItemID   *uuid.UUID
	Type     MutationType
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}
