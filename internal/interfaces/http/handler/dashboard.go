package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sibarkumen/backend/internal/application/report"
)

// DashboardHandler serves the landing statistics
type DashboardHandler struct {
	BaseHandler
	stats *report.StatsService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(stats *report.StatsService) *DashboardHandler {
	return &DashboardHandler{stats: stats}
}

// Stats handles GET /dashboard
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.stats.Get(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
