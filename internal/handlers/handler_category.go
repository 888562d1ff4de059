package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/silvioiatech/umbra-accountant/internal/core/ports/services"
	"github.com/silvioiatech/umbra-accountant/internal/dto"
	"github.com/silvioiatech/umbra-accountant/internal/middleware"
)

// categoryHandler handles HTTP requests related to category mappings.
type categoryHandler struct {
	categoryService portssvc.CategorySvcFacade
}

// newCategoryHandler creates a new categoryHandler.
func newCategoryHandler(cs portssvc.CategorySvcFacade) *categoryHandler {
	return &categoryHandler{
		categoryService: cs,
	}
}

// registerCategoryRoutes registers routes related to category mappings.
func registerCategoryRoutes(rg *gin.RouterGroup, categoryService portssvc.CategorySvcFacade) {
	h := newCategoryHandler(categoryService)

	categories := rg.Group("/categories")
	{
		categories.POST("/mappings", h.createMapping)
		categories.GET("/mappings", h.listMappings)
	}
}

// createMapping godoc
// @Summary Add a custom category mapping
// @Description Records a user-supplied mapping from a merchant category to a Swiss deduction category
// @Tags categories
// @Accept  json
// @Produce  json
// @Param   mapping body dto.CreateCategoryMappingRequest true "Mapping details"
// @Success 201 {object} dto.CategoryMappingResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Mapping already exists"
// @Failure 500 {object} map[string]string "Failed to create mapping"
// @Router /categories/mappings [post]
func (h *categoryHandler) createMapping(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.CreateCategoryMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateMapping", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("user_id", userID))
	logger.Info("Received request to create category mapping",
		slog.String("merchant_category", req.MerchantCategory),
		slog.String("deduction_category", req.DeductionCategory))

	mapping, err := h.categoryService.AddCustomMapping(c.Request.Context(), userID, req)
	if err != nil {
		logger.Warn("Failed to create category mapping", slog.String("error", err.Error()))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCategoryMappingResponse(mapping))
}

// listMappings godoc
// @Summary List category mappings
// @Description Retrieves all of the caller's category mappings
// @Tags categories
// @Produce  json
// @Success 200 {object} map[string][]dto.CategoryMappingResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list mappings"
// @Router /categories/mappings [get]
func (h *categoryHandler) listMappings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	mappings, err := h.categoryService.ListMappings(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list category mappings", slog.String("error", err.Error()))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"mappings": dto.ToListCategoryMappingResponse(mappings)})
}
