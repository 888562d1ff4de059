package repositories

import (
	"context"
	"time"

	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
)

// MerchantReader defines read operations for canonical merchant data
type MerchantReader interface {
	// FindMerchantByID retrieves a merchant by its unique identifier.
	FindMerchantByID(ctx context.Context, merchantID string) (*domain.CanonicalMerchant, error)

	// FindMerchantByVAT retrieves a merchant by its Swiss VAT number.
	FindMerchantByVAT(ctx context.Context, vatNumber string) (*domain.CanonicalMerchant, error)

	// FindMerchantByAlias retrieves the merchant owning a normalized alias.
	FindMerchantByAlias(ctx context.Context, normalizedAlias string) (*domain.CanonicalMerchant, error)

	// ListMerchants retrieves a paginated list of merchants.
	ListMerchants(ctx context.Context, limit int, offset int) ([]domain.CanonicalMerchant, error)
}

// MerchantWriter defines write operations for canonical merchant data
type MerchantWriter interface {
	// SaveMerchant persists a new merchant.
	SaveMerchant(ctx context.Context, merchant domain.CanonicalMerchant) error

	// AddMerchantAlias records a newly learned alias for a merchant.
	AddMerchantAlias(ctx context.Context, merchantID string, alias string, userID string, now time.Time) error
}

// MerchantRepositoryFacade combines all merchant-related repository interfaces
type MerchantRepositoryFacade interface {
	MerchantReader
	MerchantWriter
}
