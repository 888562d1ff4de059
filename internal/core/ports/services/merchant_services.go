package services

import (
	"context"

	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
	"github.com/silvioiatech/umbra-accountant/internal/dto"
)

// MerchantResolverSvc defines fuzzy merchant identity resolution
type MerchantResolverSvc interface {
	// ResolveMerchant maps a raw merchant string to a canonical merchant,
	// creating one when nothing matches. The returned confidence is 1.0 for
	// VAT or alias hits and the similarity score for fuzzy hits.
	ResolveMerchant(ctx context.Context, userID string, rawText string) (*domain.CanonicalMerchant, float64, error)
}

// MerchantReaderSvc defines read operations for canonical merchants
type MerchantReaderSvc interface {
	// GetMerchantByID retrieves a merchant by its unique identifier.
	GetMerchantByID(ctx context.Context, merchantID string) (*domain.CanonicalMerchant, error)

	// ListMerchants retrieves a paginated list of merchants.
	ListMerchants(ctx context.Context, limit int, offset int) ([]domain.CanonicalMerchant, error)
}

// MerchantWriterSvc defines write operations for canonical merchants
type MerchantWriterSvc interface {
	// CreateMerchant persists a new canonical merchant.
	CreateMerchant(ctx context.Context, userID string, req dto.CreateMerchantRequest) (*domain.CanonicalMerchant, error)
}

// MerchantSvcFacade combines all merchant-related service interfaces
type MerchantSvcFacade interface {
	MerchantResolverSvc
	MerchantReaderSvc
	MerchantWriterSvc
}
