package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	docapp "github.com/sibarkumen/backend/internal/application/document"
	"github.com/sibarkumen/backend/internal/interfaces/http/dto"
)

// AttachmentFormField is the multipart field holding the scan
const AttachmentFormField = "file"

// AttachmentHandler handles the signed scan of a BAST in
type AttachmentHandler struct {
	BaseHandler
	attachments *docapp.AttachmentService
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(attachments *docapp.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments}
}

// Upload handles POST /dashboard/bast-in/:id/attachment (multipart, field "file")
func (h *AttachmentHandler) Upload(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	fh, err := c.FormFile(AttachmentFormField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Scan file is too large")
			return
		}
		h.BadRequest(c, "Multipart field \""+AttachmentFormField+"\" is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.BadRequest(c, "Uploaded file cannot be read")
		return
	}
	defer f.Close()

	resp, err := h.attachments.Attach(c.Request.Context(), id, docapp.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Link handles GET /dashboard/bast-in/:id/attachment. It answers with a
// presigned URL; ?redirect=1 sends the browser straight to it.
func (h *AttachmentHandler) Link(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.attachments.Link(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if c.Query("redirect") == "1" {
		c.Redirect(http.StatusFound, resp.URL)
		return
	}
	h.Success(c, resp)
}
