package handler

import (
	"context"
	"mime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	docapp "github.com/sibarkumen/backend/internal/application/document"
	"github.com/sibarkumen/backend/internal/domain/document"
	"github.com/sibarkumen/backend/internal/infrastructure/printing"
)

// PrintHandler serves the printable SPB, SPPB and BAST documents
type PrintHandler struct {
	BaseHandler
	prints *docapp.PrintService
}

// NewPrintHandler creates a new PrintHandler
func NewPrintHandler(prints *docapp.PrintService) *PrintHandler {
	return &PrintHandler{prints: prints}
}

// Requisition handles GET /dashboard/spb/:id/print
func (h *PrintHandler) Requisition(c *gin.Context) {
	h.serve(c, h.prints.PrintRequisition)
}

// Approval handles GET /dashboard/sppb/:id/print
func (h *PrintHandler) Approval(c *gin.Context) {
	h.serve(c, h.prints.PrintApproval)
}

// Handover returns the print handler for one BAST direction
func (h *PrintHandler) Handover(dir document.Direction) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.serve(c, func(ctx context.Context, id uuid.UUID) (*printing.Output, error) {
			return h.prints.PrintHandover(ctx, dir, id)
		})
	}
}

// serve renders the document and sends it inline, so browsers open the
// PDF viewer. ?download=1 asks for an attachment instead.
func (h *PrintHandler) serve(c *gin.Context, render func(context.Context, uuid.UUID) (*printing.Output, error)) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	out, err := render(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	disposition := "inline"
	if c.Query("download") == "1" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": out.Filename}))
	c.Header("Cache-Control", "no-store")
	c.Data(200, out.ContentType, out.Data)
}
