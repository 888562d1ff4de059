package services

import (
	"context"

	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
	"github.com/silvioiatech/umbra-accountant/internal/dto"
)

// CategorizerSvc assigns deduction categories to merchant text
type CategorizerSvc interface {
	// Categorize returns the deduction category for a merchant string using
	// the precedence user override > learned mapping > keyword heuristics,
	// falling back to non_deductible with zero confidence.
	Categorize(ctx context.Context, userID string, merchantText string) (string, float64, error)
}

// CategoryMappingSvc manages per-user category mappings
type CategoryMappingSvc interface {
	// AddCustomMapping records a user-supplied mapping from a merchant
	// category to a deduction category.
	AddCustomMapping(ctx context.Context, userID string, req dto.CreateCategoryMappingRequest) (*domain.CategoryMapping, error)

	// ListMappings retrieves all mappings for a user.
	ListMappings(ctx context.Context, userID string) ([]domain.CategoryMapping, error)
}

// CategorySvcFacade combines all categorization service interfaces
type CategorySvcFacade interface {
	CategorizerSvc
	CategoryMappingSvc
}
