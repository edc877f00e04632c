package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/sibarkumen/backend/internal/application/inventory"
)

// ItemHandler handles items (barang), the autocomplete and stock history
type ItemHandler struct {
	BaseHandler
	items *inventoryapp.ItemService
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(items *inventoryapp.ItemService) *ItemHandler {
	return &ItemHandler{items: items}
}

// ===================== Query Methods =====================

// List handles GET /dashboard/items?category_id=&unit_id=&active=&low_stock=
func (h *ItemHandler) List(c *gin.Context) {
	filter, ok := h.listFilterWith(c, "category_id", "unit_id", "active", "low_stock")
	if !ok {
		return
	}
	page, err := h.items.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// Get handles GET /dashboard/items/:id
func (h *ItemHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	item, err := h.items.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Search handles GET /dashboard/items/search?q=. An empty query returns
// an empty list rather than every item.
func (h *ItemHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		h.Success(c, []inventoryapp.ItemSuggestion{})
		return
	}
	if len(q) > 100 {
		q = q[:100]
	}
	hits, err := h.items.Search(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, hits)
}

// mutationQuery is the query string of the mutation history
type mutationQuery struct {
	ItemID   string     `form:"item_id" binding:"omitempty,uuid"`
	Type     string     `form:"type" binding:"omitempty,oneof=IN OUT ADJUSTMENT"`
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Mutations handles GET /dashboard/mutations
func (h *ItemHandler) Mutations(c *gin.Context) {
	var q mutationQuery
	if !h.bindQuery(c, &q) {
		return
	}
	h.mutations(c, q)
}

// ItemMutations handles GET /dashboard/items/:id/mutations
func (h *ItemHandler) ItemMutations(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var q mutationQuery
	if !h.bindQuery(c, &q) {
		return
	}
	q.ItemID = id.String()
	h.mutations(c, q)
}

func (h *ItemHandler) mutations(c *gin.Context, q mutationQuery) {
	f := inventoryapp.MutationListFilter{
		Type:     q.Type,
		From:     q.From,
		To:       q.To,
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if q.ItemID != "" {
		id := uuid.MustParse(q.ItemID)
		f.ItemID = &id
	}
	page, err := h.items.Mutations(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// ===================== Command Methods =====================

// Create handles POST /dashboard/items
func (h *ItemHandler) Create(c *gin.Context) {
	var req inventoryapp.ItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.items.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// Update handles PUT /dashboard/items/:id
func (h *ItemHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.ItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.items.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// SetActive handles PUT /dashboard/items/:id/active
func (h *ItemHandler) SetActive(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.items.SetActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Delete handles DELETE /dashboard/items/:id. Items with stock history
// answer ERR_IN_USE; deactivate them instead.
func (h *ItemHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.items.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
