package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/silvioiatech/umbra-accountant/internal/core/ports/services"
	"github.com/silvioiatech/umbra-accountant/internal/dto"
	"github.com/silvioiatech/umbra-accountant/internal/middleware"
)

// reconciliationHandler handles HTTP requests related to reconciliation.
type reconciliationHandler struct {
	reconciliationService portssvc.ReconciliationSvcFacade
}

// newReconciliationHandler creates a new reconciliationHandler.
func newReconciliationHandler(rs portssvc.ReconciliationSvcFacade) *reconciliationHandler {
	return &reconciliationHandler{
		reconciliationService: rs,
	}
}

// registerReconciliationRoutes registers routes related to reconciliation runs and matches.
func registerReconciliationRoutes(rg *gin.RouterGroup, reconciliationService portssvc.ReconciliationSvcFacade) {
	h := newReconciliationHandler(reconciliationService)

	recon := rg.Group("/reconciliation")
	{
		recon.POST("/runs", h.runReconciliation)
		recon.GET("/summary", h.getOverview)
		recon.GET("/sessions", h.listSessions)
		recon.GET("/sessions/:sessionID", h.getSessionSummary)
		recon.GET("/matches/pending", h.listPendingMatches)
		recon.POST("/matches/:matchID/accept", h.acceptMatch)
		recon.POST("/matches/:matchID/reject", h.rejectMatch)
	}
}

// runReconciliation godoc
// @Summary Run reconciliation for a period
// @Description Matches the caller's unmatched expenses against bank transactions in the period and commits the results atomically
// @Tags reconciliation
// @Accept  json
// @Produce  json
// @Param   run body dto.ReconcileRequest true "Period and strategy"
// @Success 201 {object} dto.ReconciliationRunResponse
// @Failure 400 {object} map[string]string "Invalid period or strategy"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to run reconciliation"
// @Router /reconciliation/runs [post]
func (h *reconciliationHandler) runReconciliation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RunReconciliation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("user_id", userID))
	logger.Info("Received reconciliation run request",
		slog.String("period_start", req.PeriodStart),
		slog.String("period_end", req.PeriodEnd),
		slog.String("strategy", string(req.Strategy)))

	result, err := h.reconciliationService.RunReconciliation(c.Request.Context(), userID, req)
	if err != nil {
		logger.Warn("Reconciliation run failed", slog.String("error", err.Error()))
		respondServiceError(c, err)
		return
	}

	logger.Info("Reconciliation run completed",
		slog.String("session_id", result.Session.SessionID),
		slog.Int("auto_accepted", len(result.AutoAccepted)),
		slog.Int("pending", len(result.Pending)))
	c.JSON(http.StatusCreated, result)
}

// getOverview godoc
// @Summary Get the reconciliation overview
// @Description Aggregates the caller's match decisions across all sessions with the most recent runs
// @Tags reconciliation
// @Produce  json
// @Success 200 {object} dto.ReconciliationOverviewResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to compute overview"
// @Router /reconciliation/summary [get]
func (h *reconciliationHandler) getOverview(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	overview, err := h.reconciliationService.Overview(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to compute reconciliation overview", slog.String("error", err.Error()))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// listSessions godoc
// @Summary List reconciliation sessions
// @Description Retrieves a paginated list of the caller's reconciliation sessions
// @Tags reconciliation
// @Produce  json
// @Param   limit query int false "Maximum number of sessions to return" default(20)
// @Param   offset query int false "Number of sessions to skip" default(0)
// @Success 200 {object} map[string][]dto.SessionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list sessions"
// @Router /reconciliation/sessions [get]
func (h *reconciliationHandler) listSessions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.ListSessionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListSessions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	sessions, err := h.reconciliationService.ListSessions(c.Request.Context(), userID, params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list sessions", slog.String("error", err.Error()))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": dto.ToListSessionResponse(sessions)})
}

// getSessionSummary godoc
// @Summary Get a session with its matches
// @Description Retrieves one of the caller's reconciliation sessions together with all its match candidates
// @Tags reconciliation
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Success 200 {object} dto.SessionSummaryResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 500 {object} map[string]string "Failed to retrieve session"
// @Router /reconciliation/sessions/{sessionID} [get]
func (h *reconciliationHandler) getSessionSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	sessionID := c.Param("sessionID")

	summary, err := h.reconciliationService.SessionSummary(c.Request.Context(), userID, sessionID)
	if err != nil {
		logger.Warn("Failed to get session", slog.String("session_id", sessionID), slog.String("error", err.Error()))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// listPendingMatches godoc
// @Summary List pending match candidates
// @Description Retrieves the caller's unresolved match candidates awaiting review
// @Tags reconciliation
// @Produce  json
// @Success 200 {object} map[string][]dto.MatchResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list pending matches"
// @Router /reconciliation/matches/pending [get]
func (h *reconciliationHandler) listPendingMatches(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	matches, err := h.reconciliationService.ListPendingMatches(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list pending matches", slog.String("error", err.Error()))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": dto.ToListMatchResponse(matches)})
}

// acceptMatch godoc
// @Summary Accept a pending match
// @Description Confirms a pending candidate, marking the expense as matched and claiming the transaction
// @Tags reconciliation
// @Produce  json
// @Param   matchID path string true "Match ID"
// @Success 200 {object} dto.MatchResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Match not found"
// @Failure 409 {object} map[string]string "Match already resolved"
// @Failure 500 {object} map[string]string "Failed to accept match"
// @Router /reconciliation/matches/{matchID}/accept [post]
func (h *reconciliationHandler) acceptMatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	matchID := c.Param("matchID")

	logger = logger.With(slog.String("user_id", userID), slog.String("match_id", matchID))
	logger.Info("Received request to accept match")

	match, err := h.reconciliationService.ConfirmMatch(c.Request.Context(), userID, matchID)
	if err != nil {
		logger.Warn("Failed to accept match", slog.String("error", err.Error()))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMatchResponse(match))
}

// rejectMatch godoc
// @Summary Reject a pending match
// @Description Rejects a pending candidate; the pair is excluded from future runs and the expense returns to the unmatched pool
// @Tags reconciliation
// @Accept  json
// @Produce  json
// @Param   matchID path string true "Match ID"
// @Param   rejection body dto.RejectMatchRequest false "Optional rejection reason"
// @Success 200 {object} dto.MatchResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Match not found"
// @Failure 409 {object} map[string]string "Match already resolved"
// @Failure 500 {object} map[string]string "Failed to reject match"
// @Router /reconciliation/matches/{matchID}/reject [post]
func (h *reconciliationHandler) rejectMatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	matchID := c.Param("matchID")

	// The body is optional; an empty reason is allowed.
	var req dto.RejectMatchRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for RejectMatch", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	logger = logger.With(slog.String("user_id", userID), slog.String("match_id", matchID))
	logger.Info("Received request to reject match")

	match, err := h.reconciliationService.RejectMatch(c.Request.Context(), userID, matchID, req.Reason)
	if err != nil {
		logger.Warn("Failed to reject match", slog.String("error", err.Error()))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMatchResponse(match))
}
