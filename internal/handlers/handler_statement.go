package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/silvioiatech/umbra-accountant/internal/core/ports/services"
	"github.com/silvioiatech/umbra-accountant/internal/dto"
	"github.com/silvioiatech/umbra-accountant/internal/middleware"
)

// Uploads beyond this size are rejected before parsing.
const maxStatementUploadBytes = 10 << 20

// statementHandler handles HTTP requests related to bank statements.
type statementHandler struct {
	statementService portssvc.StatementSvcFacade
}

// newStatementHandler creates a new statementHandler.
func newStatementHandler(ss portssvc.StatementSvcFacade) *statementHandler {
	return &statementHandler{
		statementService: ss,
	}
}

// registerStatementRoutes registers routes related to statements and transactions.
func registerStatementRoutes(rg *gin.RouterGroup, statementService portssvc.StatementSvcFacade) {
	h := newStatementHandler(statementService)

	statements := rg.Group("/statements")
	{
		statements.POST("/import", h.importStatement)
		statements.GET("", h.listStatements)
		statements.GET("/:statementID", h.getStatementByID)
	}
	rg.GET("/transactions", h.listTransactions)
}

// importStatement godoc
// @Summary Import a bank statement
// @Description Uploads a statement file (CAMT.053 XML or bank CSV), detects its format, parses it and stores the non-duplicate transactions
// @Tags statements
// @Accept  multipart/form-data
// @Produce  json
// @Param   file formData file true "Statement file"
// @Success 201 {object} dto.ImportStatementResponse
// @Failure 400 {object} map[string]string "Missing or oversized file"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 422 {object} map[string]string "Unrecognized or unparseable statement"
// @Failure 500 {object} map[string]string "Failed to import statement"
// @Router /statements/import [post]
func (h *statementHandler) importStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		logger.Warn("Statement upload missing file part", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'file' form field"})
		return
	}
	if fileHeader.Size > maxStatementUploadBytes {
		logger.Warn("Statement upload too large", slog.Int64("size", fileHeader.Size))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statement file exceeds the 10 MiB limit"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded statement", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, maxStatementUploadBytes+1))
	if err != nil {
		logger.Error("Failed to read uploaded statement", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}

	logger = logger.With(slog.String("user_id", userID), slog.String("file_name", fileHeader.Filename))
	logger.Info("Received statement import request", slog.Int("bytes", len(raw)))

	result, err := h.statementService.ImportStatement(c.Request.Context(), userID, fileHeader.Filename, raw)
	if err != nil {
		logger.Warn("Statement import failed", slog.String("error", err.Error()))
		respondServiceError(c, err)
		return
	}

	logger.Info("Statement imported",
		slog.String("statement_id", result.StatementID),
		slog.Int("imported", result.ImportedCount),
		slog.Int("duplicates", result.DuplicateCount))
	c.JSON(http.StatusCreated, result)
}

// listStatements godoc
// @Summary List imported statements
// @Description Retrieves a paginated list of the caller's imported statements
// @Tags statements
// @Produce  json
// @Param   limit query int false "Maximum number of statements to return" default(20)
// @Param   offset query int false "Number of statements to skip" default(0)
// @Success 200 {object} map[string][]dto.StatementResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list statements"
// @Router /statements [get]
func (h *statementHandler) listStatements(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.ListStatementsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListStatements", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	statements, err := h.statementService.ListStatements(c.Request.Context(), userID, params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list statements", slog.String("error", err.Error()))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"statements": dto.ToListStatementResponse(statements)})
}

// getStatementByID godoc
// @Summary Get a statement by ID
// @Description Retrieves details for one of the caller's statements
// @Tags statements
// @Produce  json
// @Param   statementID path string true "Statement ID"
// @Success 200 {object} dto.StatementResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Statement not found"
// @Failure 500 {object} map[string]string "Failed to retrieve statement"
// @Router /statements/{statementID} [get]
func (h *statementHandler) getStatementByID(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	statementID := c.Param("statementID")

	statement, err := h.statementService.GetStatementByID(c.Request.Context(), userID, statementID)
	if err != nil {
		logger.Warn("Failed to get statement", slog.String("statement_id", statementID), slog.String("error", err.Error()))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToStatementResponse(statement))
}

// listTransactions godoc
// @Summary List transactions in a period
// @Description Retrieves the caller's bank transactions booked within [from, to]
// @Tags statements
// @Produce  json
// @Param   from query string true "Period start (YYYY-MM-DD)"
// @Param   to query string true "Period end (YYYY-MM-DD)"
// @Success 200 {object} map[string][]dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid period"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Router /transactions [get]
func (h *statementHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	// Binding already validated the layout.
	from, _ := time.Parse("2006-01-02", params.From)
	to, _ := time.Parse("2006-01-02", params.To)
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'to' must not precede 'from'"})
		return
	}

	transactions, err := h.statementService.ListTransactions(c.Request.Context(), userID, from, to)
	if err != nil {
		logger.Error("Failed to list transactions", slog.String("error", err.Error()))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": dto.ToListTransactionResponse(transactions)})
}
