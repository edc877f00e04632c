package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sibarkumen/backend/internal/domain/inventory"
)

// ItemRequest creates or updates an item. Stock is never set directly.
type ItemRequest struct {
	Code       string           `json:"code" binding:"required,min=1,max=50"`
	Name       string           `json:"name" binding:"required,min=1,max=200"`
	CategoryID uuid.UUID        `json:"category_id" binding:"required"`
	UnitID     uuid.UUID        `json:"unit_id" binding:"required"`
	MinStock   *decimal.Decimal `json:"min_stock"`
	Notes      string           `json:"notes" binding:"max=2000"`
}

func (r ItemRequest) details() inventory.ItemDetails {
	d := inventory.ItemDetails{
		Code:       r.Code,
		Name:       r.Name,
		CategoryID: r.CategoryID,
		UnitID:     r.UnitID,
		MinStock:   decimal.Zero,
		Notes:      r.Notes,
	}
	if r.MinStock != nil {
		d.MinStock = *r.MinStock
	}
	return d
}

// ItemResponse represents an item in API responses
type ItemResponse struct {
	ID         uuid.UUID       `json:"id"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	CategoryID uuid.UUID       `json:"category_id"`
	UnitID     uuid.UUID       `json:"unit_id"`
	Stock      decimal.Decimal `json:"stock"`
	MinStock   decimal.Decimal `json:"min_stock"`
	LowStock   bool            `json:"low_stock"`
	Active     bool            `json:"active"`
	Notes      string          `json:"notes"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ItemSuggestion is one autocomplete hit
type ItemSuggestion struct {
	ID    uuid.UUID       `json:"id"`
	Code  string          `json:"code"`
	Name  string          `json:"name"`
	Stock decimal.Decimal `json:"stock"`
}

// MutationResponse represents one line of stock history
type MutationResponse struct {
	ID              uuid.UUID       `json:"id"`
	ItemID          uuid.UUID       `json:"item_id"`
	ItemCode        string          `json:"item_code,omitempty"`
	ItemName        string          `json:"item_name,omitempty"`
	Type            string          `json:"type"`
	Quantity        decimal.Decimal `json:"quantity"`
	Delta           decimal.Decimal `json:"delta"`
	StockBefore     decimal.Decimal `json:"stock_before"`
	StockAfter      decimal.Decimal `json:"stock_after"`
	ReferenceType   string          `json:"reference_type"`
	ReferenceID     uuid.UUID       `json:"reference_id"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Note            string          `json:"note,omitempty"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

// MutationListFilter narrows the mutation history
type MutationListFilter struct {
	ItemID   *uuid.UUID
	Type     string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// CreateOpnameRequest opens a stock opname
type CreateOpnameRequest struct {
	Date time.Time `json:"date" binding:"required"`
	Note string    `json:"note" binding:"max=1000"`
}

// RecordCountRequest records counted quantities
type RecordCountRequest struct {
	Counts []CountInput `json:"counts" binding:"required,min=1,dive"`
}

// CountInput is the counted quantity of one item
type CountInput struct {
	ItemID uuid.UUID       `json:"item_id" binding:"required"`
	Actual decimal.Decimal `json:"actual" binding:"gte=0"`
	Remark string          `json:"remark" binding:"max=500"`
}

// OpnameLineResponse represents one counted item
type OpnameLineResponse struct {
	ItemID     uuid.UUID        `json:"item_id"`
	ItemCode   string           `json:"item_code"`
	ItemName   string           `json:"item_name"`
	SystemQty  decimal.Decimal  `json:"system_qty"`
	ActualQty  *decimal.Decimal `json:"actual_qty"`
	Difference decimal.Decimal  `json:"difference"`
	Remark     string           `json:"remark,omitempty"`
}

// OpnameResponse represents a stock opname session
type OpnameResponse struct {
	ID           uuid.UUID            `json:"id"`
	Date         time.Time            `json:"date"`
	Status       string               `json:"status"`
	Note         string               `json:"note"`
	TotalLines   int                  `json:"total_lines"`
	CountedLines int                  `json:"counted_lines"`
	CreatedBy    uuid.UUID            `json:"created_by"`
	CompletedAt  *time.Time           `json:"completed_at,omitempty"`
	Lines        []OpnameLineResponse `json:"lines,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

// ToItemResponse converts a domain Item to ItemResponse
func ToItemResponse(i *inventory.Item) ItemResponse {
	return ItemResponse{
		ID:         i.ID,
		Code:       i.Code,
		Name:       i.Name,
		CategoryID: i.CategoryID,
		UnitID:     i.UnitID,
		Stock:      i.Stock,
		MinStock:   i.MinStock,
		LowStock:   i.IsLowStock(),
		Active:     i.Active,
		Notes:      i.Notes,
		CreatedAt:  i.CreatedAt,
		UpdatedAt:  i.UpdatedAt,
	}
}

// ToMutationResponse converts a domain Mutation
func ToMutationResponse(m *inventory.Mutation) MutationResponse {
	resp := MutationResponse{
		ID:              m.ID,
		ItemID:          m.ItemID,
		Type:            string(m.Type),
		Quantity:        m.Quantity,
		Delta:           m.Delta(),
		StockBefore:     m.StockBefore,
		StockAfter:      m.StockAfter,
		ReferenceType:   m.ReferenceType,
		ReferenceID:     m.ReferenceID,
		ReferenceNumber: m.ReferenceNumber,
		Note:            m.Note,
		OccurredAt:      m.OccurredAt,
	}
	if m.Item != nil {
		resp.ItemCode = m.Item.Code
		resp.ItemName = m.Item.Name
	}
	return resp
}

// ToOpnameResponse converts a StockOpname; lines are included when withLines
func ToOpnameResponse(o *inventory.StockOpname, withLines bool) OpnameResponse {
	resp := OpnameResponse{
		ID:           o.ID,
		Date:         o.OpnameDate,
		Status:       string(o.Status),
		Note:         o.Note,
		TotalLines:   len(o.Lines),
		CountedLines: o.CountedLines(),
		CreatedBy:    o.CreatedBy,
		CompletedAt:  o.CompletedAt,
		CreatedAt:    o.CreatedAt,
	}
	if withLines {
		resp.Lines = make([]OpnameLineResponse, len(o.Lines))
		for i := range o.Lines {
			l := &o.Lines[i]
			resp.Lines[i] = OpnameLineResponse{
				ItemID:     l.ItemID,
				ItemCode:   l.ItemCode,
				ItemName:   l.ItemName,
				SystemQty:  l.SystemQty,
				ActualQty:  l.ActualQty,
				Difference: l.Difference(),
				Remark:     l.Remark,
			}
		}
	}
	return resp
}
