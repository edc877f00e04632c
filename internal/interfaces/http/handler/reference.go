package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	masterdataapp "github.com/sibarkumen/backend/internal/application/masterdata"
	"github.com/sibarkumen/backend/internal/domain/shared"
)

// CategoryHandler handles item categories
type CategoryHandler struct {
	BaseHandler
	categories *masterdataapp.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categories *masterdataapp.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// List handles GET /dashboard/categories
func (h *CategoryHandler) List(c *gin.Context) {
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	page, err := h.categories.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// Get handles GET /dashboard/categories/:id
func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	category, err := h.categories.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// Create handles POST /dashboard/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req masterdataapp.CategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	category, err := h.categories.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, category)
}

// Update handles PUT /dashboard/categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req masterdataapp.CategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	category, err := h.categories.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// Delete handles DELETE /dashboard/categories/:id. Categories still used
// by an item answer ERR_IN_USE.
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.categories.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// NamedService is the shape shared by the unit and position services.
type NamedService interface {
	List(ctx context.Context, filter shared.Filter) (*shared.Paginated[masterdataapp.NamedResponse], error)
	Get(ctx context.Context, id uuid.UUID) (*masterdataapp.NamedResponse, error)
	Create(ctx context.Context, req masterdataapp.NamedRequest) (*masterdataapp.NamedResponse, error)
	Update(ctx context.Context, id uuid.UUID, req masterdataapp.NamedRequest) (*masterdataapp.NamedResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NamedHandler serves units and positions, which differ only in name.
type NamedHandler struct {
	BaseHandler
	svc NamedService
}

// NewUnitHandler creates the handler for /dashboard/units
func NewUnitHandler(units *masterdataapp.UnitService) *NamedHandler {
	return &NamedHandler{svc: units}
}

// NewPositionHandler creates the handler for /dashboard/positions
func NewPositionHandler(positions *masterdataapp.PositionService) *NamedHandler {
	return &NamedHandler{svc: positions}
}

// List handles GET
func (h *NamedHandler) List(c *gin.Context) {
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	page, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// Get handles GET /:id
func (h *NamedHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Create handles POST
func (h *NamedHandler) Create(c *gin.Context) {
	var req masterdataapp.NamedRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Update handles PUT /:id
func (h *NamedHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req masterdataapp.NamedRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /:id
func (h *NamedHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
