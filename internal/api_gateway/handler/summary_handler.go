package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/personal-finance-ledger/internal/api_gateway/service"
)

// SummaryHandler serves the derived dashboard views
type SummaryHandler struct {
	summaryService service.SummaryService
	logger         *slog.Logger
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(logger *slog.Logger, summaryService service.SummaryService) *SummaryHandler {
	return &SummaryHandler{
		summaryService: summaryService,
		logger:         logger,
	}
}

// Summary handles GET /summary?months=N
func (h *SummaryHandler) Summary(c *gin.Context) {
	var query SummaryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "months must be an integer")
		return
	}

	summary, err := h.summaryService.Summary(c.Request.Context(), query.Months)
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}

	RespondOK(c, mapSummaryToResponse(summary))
}

// Budgets handles GET /budgets
func (h *SummaryHandler) Budgets(c *gin.Context) {
	report, err := h.summaryService.Budgets(c.Request.Context())
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}

	RespondOK(c, mapBudgetReportToResponse(report))
}
