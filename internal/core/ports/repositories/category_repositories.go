package repositories

import (
	"context"

	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
)

// CategoryMappingReader defines read operations for category mappings
type CategoryMappingReader interface {
	// FindMappingForMerchantCategory retrieves the user's mapping for a
	// merchant category, if one exists.
	FindMappingForMerchantCategory(ctx context.Context, userID string, merchantCategory string) (*domain.CategoryMapping, error)

	// ListMappings retrieves all mappings for a user.
	ListMappings(ctx context.Context, userID string) ([]domain.CategoryMapping, error)
}

// CategoryMappingWriter defines write operations for category mappings
type CategoryMappingWriter interface {
	// UpsertMapping inserts or replaces the user's mapping for a merchant
	// category. User overrides always replace learned mappings.
	UpsertMapping(ctx context.Context, mapping domain.CategoryMapping) error
}

// CategoryMappingRepositoryFacade combines all mapping-related repository interfaces
type CategoryMappingRepositoryFacade interface {
	CategoryMappingReader
	CategoryMappingWriter
}
