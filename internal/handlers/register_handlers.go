package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"

	"github.com/silvioiatech/umbra-accountant/cmd/docs"
	"github.com/silvioiatech/umbra-accountant/internal/apperrors"
	portssvc "github.com/silvioiatech/umbra-accountant/internal/core/ports/services"
	"github.com/silvioiatech/umbra-accountant/internal/middleware"
	"github.com/silvioiatech/umbra-accountant/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	rateLimiter *limiter.Limiter,
) {
	registerCustomValidators()

	r.Use(cors.Default())
	if rateLimiter != nil {
		r.Use(middleware.RateLimit(rateLimiter))
	}

	registerHomeRoutes(r)

	setupAPIV1Routes(r, services)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(r *gin.Engine, services *portssvc.ServiceContainer) {
	// Every data route is scoped to the caller identified by X-User-ID.
	v1 := r.Group("/api/v1", middleware.UserIdentityMiddleware())

	registerStatementRoutes(v1, services.Statement)
	registerExpenseRoutes(v1, services.Expense)
	registerMerchantRoutes(v1, services.Merchant)
	registerCategoryRoutes(v1, services.Category)
	registerReconciliationRoutes(v1, services.Reconciliation)
	registerTaxRoutes(v1, services.Tax)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// serviceErrorStatus maps service errors onto HTTP status codes shared by all
// handlers. Parsing failures are 422 because the request itself was well
// formed; its payload was not.
func serviceErrorStatus(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrTerminalState),
		errors.Is(err, apperrors.ErrAlreadyClaimed):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrFormatUnrecognized),
		errors.Is(err, apperrors.ErrEncoding),
		errors.Is(err, apperrors.ErrParse):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes the mapped status with the error message, hiding
// internals behind a generic message for 500s.
func respondServiceError(c *gin.Context, err error) {
	status := serviceErrorStatus(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
