package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/internal/service"
	"github.com/AC-trading/ac-trading/pkg/middleware"
	"github.com/AC-trading/ac-trading/pkg/response"
)

// ReportHandler files moderation reports.
type ReportHandler struct {
	reports service.ReportService
}

func NewReportHandler(reports service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Report handles POST /api/reports.
func (h *ReportHandler) Report(c *gin.Context) {
	var req domain.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.reports.Report(c.Request.Context(), middleware.MemberUUID(c), &req); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}
