package dto

import (
	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
)

// CreateMerchantRequest defines the data needed to create a canonical merchant.
type CreateMerchantRequest struct {
	DisplayName string   `json:"displayName" binding:"required"`
	VATNumber   string   `json:"vatNumber"`
	Aliases     []string `json:"aliases"`
}

// ResolveMerchantRequest carries raw merchant text for identity resolution.
type ResolveMerchantRequest struct {
	Text string `json:"text" binding:"required"`
}

// ResolveMerchantResponse returns the resolved merchant and the resolution
// confidence.
type ResolveMerchantResponse struct {
	Merchant   MerchantResponse `json:"merchant"`
	Confidence float64          `json:"confidence"`
}

// MerchantResponse defines the data returned for a canonical merchant.
type MerchantResponse struct {
	MerchantID  string   `json:"merchantID"`
	DisplayName string   `json:"displayName"`
	VATNumber   string   `json:"vatNumber,omitempty"`
	Aliases     []string `json:"aliases"`
}

// ToMerchantResponse converts a domain.CanonicalMerchant to MerchantResponse DTO
func ToMerchantResponse(m *domain.CanonicalMerchant) MerchantResponse {
	return MerchantResponse{
		MerchantID:  m.MerchantID,
		DisplayName: m.DisplayName,
		VATNumber:   m.VATNumber,
		Aliases:     m.Aliases,
	}
}

// ToListMerchantResponse converts a slice of domain.CanonicalMerchant to DTOs
func ToListMerchantResponse(merchants []domain.CanonicalMerchant) []MerchantResponse {
	res := make([]MerchantResponse, len(merchants))
	for i := range merchants {
		res[i] = ToMerchantResponse(&merchants[i])
	}
	return res
}

// ListMerchantsParams defines query parameters for listing merchants.
type ListMerchantsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}
