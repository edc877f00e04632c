package document

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sibarkumen/backend/internal/domain/inventory"
	"github.com/sibarkumen/backend/internal/domain/shared"
)

// Direction tells whether goods came in or went out.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// HandoverLine is one item on a BAST.
type HandoverLine struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	HandoverID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Note       string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (HandoverLine) TableName() string {
	return "handover_lines"
}

// Subtotal returns quantity times unit price.
func (l HandoverLine) Subtotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// Handover is a Berita Acara Serah Terima. Incoming handovers receive goods
// from a supplier; outgoing ones hand goods to an employee under an SPPB.
type Handover struct {
	shared.BaseAggregateRoot
	Number        string         `gorm:"column:document_number;type:varchar(100);not null;uniqueIndex"`
	Direction     Direction      `gorm:"type:varchar(10);not null;index"`
	Date          time.Time      `gorm:"column:document_date;type:date;not null;index"`
	SupplierID    *uuid.UUID     `gorm:"type:uuid;index"`
	ApprovalID    *uuid.UUID     `gorm:"type:uuid;uniqueIndex"`
	EmployeeID    *uuid.UUID     `gorm:"type:uuid;index"`
	Note          string         `gorm:"type:text"`
	AttachmentKey string         `gorm:"type:varchar(500)"`
	CreatedBy     uuid.UUID      `gorm:"type:uuid;not null"`
	Lines         []HandoverLine `gorm:"foreignKey:HandoverID"`
}

// TableName returns the table name for GORM
func (Handover) TableName() string {
	return "handovers"
}

// Type returns the numbering type of the handover.
func (h *Handover) Type() Type {
	if h.Direction == DirectionOut {
		return TypeHandoverOut
	}
	return TypeHandoverIn
}

// NewHandoverIn records goods received from a supplier.
func NewHandoverIn(date time.Time, supplierID uuid.UUID, note string, by uuid.UUID, lines []LineInput) (*Handover, error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier is required")
	}
	if err := validateLines(lines, true); err != nil {
		return nil, err
	}
	h := newHandover(DirectionIn, date, note, by)
	h.SupplierID = &supplierID
	for _, l := range lines {
		h.addLine(l.ItemID, l.Quantity, l.UnitPrice, l.Note)
	}
	return h, nil
}

// NewHandoverOut hands out the goods approved on an SPPB and marks it
// distributed.
func NewHandoverOut(approval *Approval, date time.Time, note string, by uuid.UUID) (*Handover, error) {
	if approval == nil {
		return nil, shared.NewDomainError("INVALID_APPROVAL", "Approval is required")
	}
	if date.Before(approval.Date) {
		return nil, shared.NewDomainError("INVALID_DATE", "Handover cannot be dated before the approval")
	}
	if err := approval.MarkDistributed(); err != nil {
		return nil, err
	}
	h := newHandover(DirectionOut, date, note, by)
	approvalID, employeeID := approval.ID, approval.EmployeeID
	h.ApprovalID = &approvalID
	h.EmployeeID = &employeeID
	for _, l := range approval.Lines {
		h.addLine(l.ItemID, l.ApprovedQty, decimal.Zero, "")
	}
	return h, nil
}

func newHandover(dir Direction, date time.Time, note string, by uuid.UUID) *Handover {
	return &Handover{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Direction:         dir,
		Date:              date,
		Note:              strings.TrimSpace(note),
		CreatedBy:         by,
	}
}

func (h *Handover) addLine(itemID uuid.UUID, qty, price decimal.Decimal, note string) {
	h.Lines = append(h.Lines, HandoverLine{
		ID:         uuid.New(),
		HandoverID: h.ID,
		ItemID:     itemID,
		Quantity:   qty,
		UnitPrice:  price,
		Note:       strings.TrimSpace(note),
	})
}

// AssignNumber sets the document number.
func (h *Handover) AssignNumber(number string) {
	h.Number = number
}

// Total returns the value of all lines.
func (h *Handover) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range h.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// ItemIDs returns the items on the handover.
func (h *Handover) ItemIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(h.Lines))
	for _, l := range h.Lines {
		ids = append(ids, l.ItemID)
	}
	return ids
}

// ApplyStock moves stock for every line: received for IN, issued for OUT.
// Either all lines apply or an error is returned; callers discard items
// on error.
func (h *Handover) ApplyStock(items map[uuid.UUID]*inventory.Item) ([]*inventory.Mutation, error) {
	if h.Number == "" {
		return nil, shared.NewDomainError("INVALID_STATE", "Handover has no number yet")
	}
	ref := inventory.Reference{
		ID:     h.ID,
		Number: h.Number,
		Note:   h.Note,
		By:     h.CreatedBy,
		At:     time.Now(),
	}
	if h.Direction == DirectionIn {
		ref.Type = inventory.RefHandoverIn
	} else {
		ref.Type = inventory.RefHandoverOut
	}

	mutations := make([]*inventory.Mutation, 0, len(h.Lines))
	for _, l := range h.Lines {
		item, ok := items[l.ItemID]
		if !ok {
			return nil, shared.NewDomainError("NOT_FOUND", "Item not found")
		}
		if !item.Active && h.Direction == DirectionIn {
			return nil, shared.NewDomainError("INVALID_STATE", "Item "+item.Code+" is inactive")
		}
		var (
			m   *inventory.Mutation
			err error
		)
		if h.Direction == DirectionIn {
			m, err = item.Receive(l.Quantity, ref)
		} else {
			m, err = item.Issue(l.Quantity, ref)
		}
		if err != nil {
			return nil, err
		}
		mutations = append(mutations, m)
	}
	return mutations, nil
}

// AttachScan records the object key of the signed scan.
func (h *Handover) AttachScan(key string) {
	h.AttachmentKey = key
	h.Touch()
}
