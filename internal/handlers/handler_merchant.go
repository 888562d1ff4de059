package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/silvioiatech/umbra-accountant/internal/core/ports/services"
	"github.com/silvioiatech/umbra-accountant/internal/dto"
	"github.com/silvioiatech/umbra-accountant/internal/middleware"
)

// merchantHandler handles HTTP requests related to canonical merchants.
type merchantHandler struct {
	merchantService portssvc.MerchantSvcFacade
}

// newMerchantHandler creates a new merchantHandler.
func newMerchantHandler(ms portssvc.MerchantSvcFacade) *merchantHandler {
	return &merchantHandler{
		merchantService: ms,
	}
}

// registerMerchantRoutes registers routes related to merchants.
func registerMerchantRoutes(rg *gin.RouterGroup, merchantService portssvc.MerchantSvcFacade) {
	h := newMerchantHandler(merchantService)

	merchants := rg.Group("/merchants")
	{
		merchants.POST("", h.createMerchant)
		merchants.GET("", h.listMerchants)
		merchants.GET("/:merchantID", h.getMerchantByID)
		merchants.POST("/resolve", h.resolveMerchant)
	}
}

// createMerchant godoc
// @Summary Create a canonical merchant
// @Description Adds a new canonical merchant with optional VAT number and aliases
// @Tags merchants
// @Accept  json
// @Produce  json
// @Param   merchant body dto.CreateMerchantRequest true "Merchant details"
// @Success 201 {object} dto.MerchantResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Merchant already exists"
// @Failure 500 {object} map[string]string "Failed to create merchant"
// @Router /merchants [post]
func (h *merchantHandler) createMerchant(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.CreateMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateMerchant", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("user_id", userID))
	logger.Info("Received request to create merchant", slog.String("display_name", req.DisplayName))

	merchant, err := h.merchantService.CreateMerchant(c.Request.Context(), userID, req)
	if err != nil {
		logger.Warn("Failed to create merchant", slog.String("error", err.Error()))
		respondServiceError(c, err)
		return
	}

	logger.Info("Merchant created", slog.String("merchant_id", merchant.MerchantID))
	c.JSON(http.StatusCreated, dto.ToMerchantResponse(merchant))
}

// listMerchants godoc
// @Summary List canonical merchants
// @Description Retrieves a paginated list of canonical merchants
// @Tags merchants
// @Produce  json
// @Param   limit query int false "Maximum number of merchants to return" default(20)
// @Param   offset query int false "Number of merchants to skip" default(0)
// @Success 200 {object} map[string][]dto.MerchantResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list merchants"
// @Router /merchants [get]
func (h *merchantHandler) listMerchants(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListMerchantsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListMerchants", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	merchants, err := h.merchantService.ListMerchants(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list merchants", slog.String("error", err.Error()))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"merchants": dto.ToListMerchantResponse(merchants)})
}

// getMerchantByID godoc
// @Summary Get a merchant by ID
// @Description Retrieves details for a canonical merchant
// @Tags merchants
// @Produce  json
// @Param   merchantID path string true "Merchant ID"
// @Success 200 {object} dto.MerchantResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Merchant not found"
// @Failure 500 {object} map[string]string "Failed to retrieve merchant"
// @Router /merchants/{merchantID} [get]
func (h *merchantHandler) getMerchantByID(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	merchantID := c.Param("merchantID")

	merchant, err := h.merchantService.GetMerchantByID(c.Request.Context(), merchantID)
	if err != nil {
		logger.Warn("Failed to get merchant", slog.String("merchant_id", merchantID), slog.String("error", err.Error()))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMerchantResponse(merchant))
}

// resolveMerchant godoc
// @Summary Resolve raw merchant text
// @Description Maps a raw merchant string from a receipt or statement to a canonical merchant, creating one when nothing matches
// @Tags merchants
// @Accept  json
// @Produce  json
// @Param   text body dto.ResolveMerchantRequest true "Raw merchant text"
// @Success 200 {object} dto.ResolveMerchantResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to resolve merchant"
// @Router /merchants/resolve [post]
func (h *merchantHandler) resolveMerchant(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.ResolveMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ResolveMerchant", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	merchant, confidence, err := h.merchantService.ResolveMerchant(c.Request.Context(), userID, req.Text)
	if err != nil {
		logger.Warn("Failed to resolve merchant", slog.String("error", err.Error()))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ResolveMerchantResponse{
		Merchant:   dto.ToMerchantResponse(merchant),
		Confidence: confidence,
	})
}
