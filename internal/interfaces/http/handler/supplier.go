package handler

import (
	"github.com/gin-gonic/gin"
	masterdataapp "github.com/sibarkumen/backend/internal/application/masterdata"
)

// SupplierHandler handles suppliers and their bank accounts
type SupplierHandler struct {
	BaseHandler
	suppliers *masterdataapp.SupplierService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(suppliers *masterdataapp.SupplierService) *SupplierHandler {
	return &SupplierHandler{suppliers: suppliers}
}

// List handles GET /dashboard/suppliers?active=
func (h *SupplierHandler) List(c *gin.Context) {
	filter, ok := h.listFilterWith(c, "active")
	if !ok {
		return
	}
	page, err := h.suppliers.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// Get handles GET /dashboard/suppliers/:id
func (h *SupplierHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	supplier, err := h.suppliers.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// Create handles POST /dashboard/suppliers
func (h *SupplierHandler) Create(c *gin.Context) {
	var req masterdataapp.SupplierRequest
	if !h.bindJSON(c, &req) {
		return
	}
	supplier, err := h.suppliers.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, supplier)
}

// Update handles PUT /dashboard/suppliers/:id
func (h *SupplierHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req masterdataapp.SupplierRequest
	if !h.bindJSON(c, &req) {
		return
	}
	supplier, err := h.suppliers.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// SetActive handles PUT /dashboard/suppliers/:id/active
func (h *SupplierHandler) SetActive(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req masterdataapp.SetActiveRequest
	if !h.bindJSON(c, &req) {
		return
	}
	supplier, err := h.suppliers.SetActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// Delete handles DELETE /dashboard/suppliers/:id
func (h *SupplierHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.suppliers.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ===================== Bank Accounts =====================

// AddAccount handles POST /dashboard/suppliers/:id/accounts
func (h *SupplierHandler) AddAccount(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req masterdataapp.BankAccountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	supplier, err := h.suppliers.AddAccount(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, supplier)
}

// UpdateAccount handles PUT /dashboard/suppliers/:id/accounts/:accountId
func (h *SupplierHandler) UpdateAccount(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	accountID, ok := h.pathID(c, "accountId")
	if !ok {
		return
	}
	var req masterdataapp.BankAccountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	supplier, err := h.suppliers.UpdateAccount(c.Request.Context(), id, accountID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// SetPrimaryAccount handles POST /dashboard/suppliers/:id/accounts/:accountId/primary
func (h *SupplierHandler) SetPrimaryAccount(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	accountID, ok := h.pathID(c, "accountId")
	if !ok {
		return
	}
	supplier, err := h.suppliers.SetPrimaryAccount(c.Request.Context(), id, accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// DeleteAccount handles DELETE /dashboard/suppliers/:id/accounts/:accountId
func (h *SupplierHandler) DeleteAccount(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	accountID, ok := h.pathID(c, "accountId")
	if !ok {
		return
	}
	supplier, err := h.suppliers.DeleteAccount(c.Request.Context(), id, accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}
