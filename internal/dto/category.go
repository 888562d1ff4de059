package dto

import (
	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
)

// CreateCategoryMappingRequest defines a user-supplied mapping from a merchant
// category to a Swiss deduction category.
type CreateCategoryMappingRequest struct {
	MerchantCategory  string `json:"merchantCategory" binding:"required"`
	DeductionCategory string `json:"deductionCategory" binding:"required,deduction_category"`
}

// CategoryMappingResponse defines the data returned for a category mapping.
type CategoryMappingResponse struct {
	MappingID         string  `json:"mappingID"`
	MerchantCategory  string  `json:"merchantCategory"`
	DeductionCategory string  `json:"deductionCategory"`
	Confidence        float64 `json:"confidence"`
	UserOverride      bool    `json:"userOverride"`
}

// ToCategoryMappingResponse converts a domain.CategoryMapping to its DTO
func ToCategoryMappingResponse(m *domain.CategoryMapping) CategoryMappingResponse {
	return CategoryMappingResponse{
		MappingID:         m.MappingID,
		MerchantCategory:  m.MerchantCategory,
		DeductionCategory: m.DeductionCategory,
		Confidence:        m.Confidence,
		UserOverride:      m.UserOverride,
	}
}

// ToListCategoryMappingResponse converts a slice of domain.CategoryMapping to DTOs
func ToListCategoryMappingResponse(mappings []domain.CategoryMapping) []CategoryMappingResponse {
	res := make([]CategoryMappingResponse, len(mappings))
	for i := range mappings {
		res[i] = ToCategoryMappingResponse(&mappings[i])
	}
	return res
}
