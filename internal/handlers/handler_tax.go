package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	portssvc "github.com/silvioiatech/umbra-accountant/internal/core/ports/services"
	"github.com/silvioiatech/umbra-accountant/internal/dto"
	"github.com/silvioiatech/umbra-accountant/internal/middleware"
)

// taxHandler handles HTTP requests related to tax deduction summaries.
type taxHandler struct {
	taxService portssvc.TaxSvcFacade
}

// newTaxHandler creates a new taxHandler.
func newTaxHandler(ts portssvc.TaxSvcFacade) *taxHandler {
	return &taxHandler{
		taxService: ts,
	}
}

// registerTaxRoutes registers routes related to tax summaries.
func registerTaxRoutes(rg *gin.RouterGroup, taxService portssvc.TaxSvcFacade) {
	h := newTaxHandler(taxService)

	tax := rg.Group("/tax")
	{
		tax.GET("/deductions", h.getDeductionSummary)
	}
}

// getDeductionSummary godoc
// @Summary Get the deduction summary for a tax year
// @Description Aggregates the caller's categorized expenses for a year, applies federal and cantonal limits and estimates tax savings
// @Tags tax
// @Produce  json
// @Param   year query int true "Tax year"
// @Param   canton query string true "Canton abbreviation (e.g. ZH, GE)"
// @Success 200 {object} dto.TaxSummaryResponse
// @Failure 400 {object} map[string]string "Invalid year or canton"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to compute deduction summary"
// @Router /tax/deductions [get]
func (h *taxHandler) getDeductionSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.TaxSummaryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for GetDeductionSummary", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	canton := strings.ToUpper(params.Canton)
	logger = logger.With(slog.String("user_id", userID), slog.Int("year", params.Year), slog.String("canton", canton))
	logger.Info("Received deduction summary request")

	summary, err := h.taxService.CalculateDeductions(c.Request.Context(), userID, params.Year, canton)
	if err != nil {
		logger.Warn("Failed to compute deduction summary", slog.String("error", err.Error()))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaxSummaryResponse(summary))
}
