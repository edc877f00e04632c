package handler

import (
	"github.com/gin-gonic/gin"
	docapp "github.com/sibarkumen/backend/internal/application/document"
	"github.com/sibarkumen/backend/internal/domain/document"
)

// DocumentHandler handles the SPB, SPPB and BAST documents
type DocumentHandler struct {
	BaseHandler
	docs *docapp.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(docs *docapp.DocumentService) *DocumentHandler {
	return &DocumentHandler{docs: docs}
}

// NextNumber handles GET /dashboard/documents/next-number/:type. The number
// is a preview; the one stored on creation may differ if another document
// of the same type is created first.
func (h *DocumentHandler) NextNumber(c *gin.Context) {
	resp, err := h.docs.NextNumber(c.Request.Context(), c.Param("type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ===================== SPB =====================

// ListRequisitions handles GET /dashboard/spb?status=&employee_id=
func (h *DocumentHandler) ListRequisitions(c *gin.Context) {
	filter, ok := h.listFilterWith(c, "status", "employee_id")
	if !ok {
		return
	}
	page, err := h.docs.ListRequisitions(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// GetRequisition handles GET /dashboard/spb/:id
func (h *DocumentHandler) GetRequisition(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.docs.GetRequisition(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CreateRequisition handles POST /dashboard/spb
func (h *DocumentHandler) CreateRequisition(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req docapp.CreateRequisitionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.docs.CreateRequisition(c.Request.Context(), session.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// RejectRequisition handles POST /dashboard/spb/:id/reject
func (h *DocumentHandler) RejectRequisition(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req docapp.RejectRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.docs.RejectRequisition(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ===================== SPPB =====================

// ListApprovals handles GET /dashboard/sppb?status=&employee_id=
func (h *DocumentHandler) ListApprovals(c *gin.Context) {
	filter, ok := h.listFilterWith(c, "status", "employee_id")
	if !ok {
		return
	}
	page, err := h.docs.ListApprovals(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// GetApproval handles GET /dashboard/sppb/:id
func (h *DocumentHandler) GetApproval(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.docs.GetApproval(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Approve handles POST /dashboard/spb/:id/approve, which issues the SPPB
func (h *DocumentHandler) Approve(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req docapp.ApproveRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.docs.ApproveRequisition(c.Request.Context(), id, session.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ===================== BAST =====================

// ListHandovers returns the list handler for one direction
func (h *DocumentHandler) ListHandovers(dir document.Direction) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, ok := h.listFilterWith(c, "supplier_id", "employee_id")
		if !ok {
			return
		}
		page, err := h.docs.ListHandovers(c.Request.Context(), dir, filter)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		Page(c, page)
	}
}

// GetHandover returns the detail handler for one direction
func (h *DocumentHandler) GetHandover(dir document.Direction) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.pathID(c, "id")
		if !ok {
			return
		}
		resp, err := h.docs.GetHandover(c.Request.Context(), dir, id)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, resp)
	}
}

// CreateHandoverIn handles POST /dashboard/bast-in
func (h *DocumentHandler) CreateHandoverIn(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req docapp.CreateHandoverInRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.docs.CreateHandoverIn(c.Request.Context(), session.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// CreateHandoverOut handles POST /dashboard/bast-out
func (h *DocumentHandler) CreateHandoverOut(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req docapp.CreateHandoverOutRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.docs.CreateHandoverOut(c.Request.Context(), session.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
