package document

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sibarkumen/backend/internal/domain/document"
)

// LineRequest is one item on a new document
type LineRequest struct {
	ItemID    uuid.UUID        `json:"item_id" binding:"required"`
	Quantity  decimal.Decimal  `json:"quantity" binding:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Note      string           `json:"note" binding:"max=500"`
}

func toLineInputs(lines []LineRequest) []document.LineInput {
	out := make([]document.LineInput, len(lines))
	for i, l := range lines {
		out[i] = document.LineInput{ItemID: l.ItemID, Quantity: l.Quantity, Note: l.Note}
		if l.UnitPrice != nil {
			out[i].UnitPrice = *l.UnitPrice
		}
	}
	return out
}

// CreateRequisitionRequest creates an SPB
type CreateRequisitionRequest struct {
	Date       time.Time     `json:"date" binding:"required"`
	EmployeeID uuid.UUID     `json:"employee_id" binding:"required"`
	Purpose    string        `json:"purpose" binding:"required,max=1000"`
	Lines      []LineRequest `json:"lines" binding:"required,min=1,dive"`
}

// RejectRequest rejects an SPB
type RejectRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

// ApproveLine is the approved quantity of one requested item
type ApproveLine struct {
	ItemID   uuid.UUID       `json:"item_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required,gt=0"`
}

// ApproveRequest issues an SPPB for a pending SPB
type ApproveRequest struct {
	Date  time.Time     `json:"date" binding:"required"`
	Note  string        `json:"note" binding:"max=1000"`
	Lines []ApproveLine `json:"lines" binding:"required,min=1,dive"`
}

// CreateHandoverInRequest records goods received from a supplier
type CreateHandoverInRequest struct {
	Date       time.Time     `json:"date" binding:"required"`
	SupplierID uuid.UUID     `json:"supplier_id" binding:"required"`
	Note       string        `json:"note" binding:"max=1000"`
	Lines      []LineRequest `json:"lines" binding:"required,min=1,dive"`
}

// CreateHandoverOutRequest hands out the goods of an SPPB
type CreateHandoverOutRequest struct {
	ApprovalID uuid.UUID `json:"approval_id" binding:"required"`
	Date       time.Time `json:"date" binding:"required"`
	Note       string    `json:"note" binding:"max=1000"`
}

// LineResponse is one item line of any document
type LineResponse struct {
	ItemID    uuid.UUID        `json:"item_id"`
	ItemCode  string           `json:"item_code,omitempty"`
	ItemName  string           `json:"item_name,omitempty"`
	Requested *decimal.Decimal `json:"requested,omitempty"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Subtotal  *decimal.Decimal `json:"subtotal,omitempty"`
	Note      string           `json:"note,omitempty"`
}

// RequisitionResponse represents an SPB
type RequisitionResponse struct {
	ID           uuid.UUID      `json:"id"`
	Number       string         `json:"number"`
	Date         time.Time      `json:"date"`
	EmployeeID   uuid.UUID      `json:"employee_id"`
	Purpose      string         `json:"purpose"`
	Status       string         `json:"status"`
	RejectReason string         `json:"reject_reason,omitempty"`
	CreatedBy    uuid.UUID      `json:"created_by"`
	Lines        []LineResponse `json:"lines,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// ApprovalResponse represents an SPPB
type ApprovalResponse struct {
	ID            uuid.UUID      `json:"id"`
	Number        string         `json:"number"`
	Date          time.Time      `json:"date"`
	RequisitionID uuid.UUID      `json:"requisition_id"`
	EmployeeID    uuid.UUID      `json:"employee_id"`
	Note          string         `json:"note"`
	Status        string         `json:"status"`
	ApprovedBy    uuid.UUID      `json:"approved_by"`
	Lines         []LineResponse `json:"lines,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// HandoverResponse represents a BAST
type HandoverResponse struct {
	ID            uuid.UUID        `json:"id"`
	Number        string           `json:"number"`
	Direction     string           `json:"direction"`
	Date          time.Time        `json:"date"`
	SupplierID    *uuid.UUID       `json:"supplier_id,omitempty"`
	ApprovalID    *uuid.UUID       `json:"approval_id,omitempty"`
	EmployeeID    *uuid.UUID       `json:"employee_id,omitempty"`
	Note          string           `json:"note"`
	HasAttachment bool             `json:"has_attachment"`
	Total         *decimal.Decimal `json:"total,omitempty"`
	CreatedBy     uuid.UUID        `json:"created_by"`
	Lines         []LineResponse   `json:"lines,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// NextNumberResponse previews the next document number
type NextNumberResponse struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

// AttachmentResponse is a temporary download link for a scan
type AttachmentResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ToRequisitionResponse converts an SPB; names fills item code and name
func ToRequisitionResponse(r *document.Requisition, names ItemNames) RequisitionResponse {
	resp := RequisitionResponse{
		ID:           r.ID,
		Number:       r.Number,
		Date:         r.Date,
		EmployeeID:   r.EmployeeID,
		Purpose:      r.Purpose,
		Status:       string(r.Status),
		RejectReason: r.RejectReason,
		CreatedBy:    r.CreatedBy,
		CreatedAt:    r.CreatedAt,
	}
	for _, l := range r.Lines {
		resp.Lines = append(resp.Lines, names.line(LineResponse{ItemID: l.ItemID, Quantity: l.Quantity, Note: l.Note}))
	}
	return resp
}

// ToApprovalResponse converts an SPPB
func ToApprovalResponse(a *document.Approval, names ItemNames) ApprovalResponse {
	resp := ApprovalResponse{
		ID:            a.ID,
		Number:        a.Number,
		Date:          a.Date,
		RequisitionID: a.RequisitionID,
		EmployeeID:    a.EmployeeID,
		Note:          a.Note,
		Status:        string(a.Status),
		ApprovedBy:    a.ApprovedBy,
		CreatedAt:     a.CreatedAt,
	}
	for _, l := range a.Lines {
		requested := l.RequestedQty
		resp.Lines = append(resp.Lines, names.line(LineResponse{ItemID: l.ItemID, Requested: &requested, Quantity: l.ApprovedQty}))
	}
	return resp
}

// ToHandoverResponse converts a BAST. Prices only appear on incoming ones.
func ToHandoverResponse(h *document.Handover, names ItemNames) HandoverResponse {
	resp := HandoverResponse{
		ID:            h.ID,
		Number:        h.Number,
		Direction:     string(h.Direction),
		Date:          h.Date,
		SupplierID:    h.SupplierID,
		ApprovalID:    h.ApprovalID,
		EmployeeID:    h.EmployeeID,
		Note:          h.Note,
		HasAttachment: h.AttachmentKey != "",
		CreatedBy:     h.CreatedBy,
		CreatedAt:     h.CreatedAt,
	}
	priced := h.Direction == document.DirectionIn
	if priced && len(h.Lines) > 0 {
		total := h.Total()
		resp.Total = &total
	}
	for _, l := range h.Lines {
		line := LineResponse{ItemID: l.ItemID, Quantity: l.Quantity, Note: l.Note}
		if priced {
			price, sub := l.UnitPrice, l.Subtotal()
			line.UnitPrice, line.Subtotal = &price, &sub
		}
		resp.Lines = append(resp.Lines, names.line(line))
	}
	return resp
}

// ItemNames maps item IDs to display code and name
type ItemNames map[uuid.UUID][2]string

func (n ItemNames) line(l LineResponse) LineResponse {
	if v, ok := n[l.ItemID]; ok {
		l.ItemCode, l.ItemName = v[0], v[1]
	}
	return l
}
