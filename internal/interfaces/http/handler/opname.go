package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/sibarkumen/backend/internal/application/inventory"
)

// OpnameHandler handles stock opname sessions
type OpnameHandler struct {
	BaseHandler
	opnames *inventoryapp.OpnameService
}

// NewOpnameHandler creates a new OpnameHandler
func NewOpnameHandler(opnames *inventoryapp.OpnameService) *OpnameHandler {
	return &OpnameHandler{opnames: opnames}
}

// List handles GET /dashboard/opnames?status=
func (h *OpnameHandler) List(c *gin.Context) {
	filter, ok := h.listFilterWith(c, "status")
	if !ok {
		return
	}
	page, err := h.opnames.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// Get handles GET /dashboard/opnames/:id
func (h *OpnameHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	opname, err := h.opnames.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, opname)
}

// Create handles POST /dashboard/opnames. The system stock of every active
// item is snapshotted.
func (h *OpnameHandler) Create(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req inventoryapp.CreateOpnameRequest
	if !h.bindJSON(c, &req) {
		return
	}
	opname, err := h.opnames.Create(c.Request.Context(), session.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, opname)
}

// RecordCounts handles PUT /dashboard/opnames/:id/counts
func (h *OpnameHandler) RecordCounts(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.RecordCountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	opname, err := h.opnames.RecordCounts(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, opname)
}

// Complete handles POST /dashboard/opnames/:id/complete
func (h *OpnameHandler) Complete(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	opname, err := h.opnames.Complete(c.Request.Context(), id, session.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, opname)
}

// Cancel handles POST /dashboard/opnames/:id/cancel
func (h *OpnameHandler) Cancel(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	opname, err := h.opnames.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, opname)
}
