package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/silvioiatech/umbra-accountant/internal/apperrors"
	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
	portsrepo "github.com/silvioiatech/umbra-accountant/internal/core/ports/repositories"
	portssvc "github.com/silvioiatech/umbra-accountant/internal/core/ports/services"
	"github.com/silvioiatech/umbra-accountant/internal/dto"
	"github.com/silvioiatech/umbra-accountant/internal/platform/rules"
)

// categoryService implements the CategorySvcFacade interface
type categoryService struct {
	BaseService
	mappingRepo portsrepo.CategoryMappingRepositoryFacade
}

// NewCategoryService creates a new categorization service.
func NewCategoryService(mappingRepo portsrepo.CategoryMappingRepositoryFacade) portssvc.CategorySvcFacade {
	return &categoryService{mappingRepo: mappingRepo}
}

// Ensure categoryService implements the CategorySvcFacade interface
var _ portssvc.CategorySvcFacade = (*categoryService)(nil)

// Categorize assigns a deduction category to merchant text. Stored mappings
// (user overrides first, then learned rows) win over keyword matching.
func (s *categoryService) Categorize(ctx context.Context, userID string, merchantText string) (string, float64, error) {
	normalized := domain.NormalizeMerchantText(merchantText)
	if normalized == "" {
		return domain.CategoryNonDeductible, 0, nil
	}

	mapping, err := s.mappingRepo.FindMappingForMerchantCategory(ctx, userID, normalized)
	if err == nil {
		return mapping.DeductionCategory, mapping.Confidence, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return "", 0, err
	}

	category, confidence := rules.ClassifyText(merchantText)
	return category, confidence, nil
}

// AddCustomMapping records a user-supplied mapping from a merchant category
// to a deduction category.
func (s *categoryService) AddCustomMapping(ctx context.Context, userID string, req dto.CreateCategoryMappingRequest) (*domain.CategoryMapping, error) {
	if !rules.ValidDeductionCategory(req.DeductionCategory) {
		return nil, fmt.Errorf("%w: unknown deduction category %q", apperrors.ErrValidation, req.DeductionCategory)
	}

	now := time.Now()
	mapping := domain.CategoryMapping{
		MappingID:         uuid.NewString(),
		UserID:            userID,
		MerchantCategory:  domain.NormalizeMerchantText(req.MerchantCategory),
		DeductionCategory: req.DeductionCategory,
		Confidence:        1.0,
		UserOverride:      true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if mapping.MerchantCategory == "" {
		return nil, fmt.Errorf("%w: merchant category is empty after normalization", apperrors.ErrValidation)
	}
	if err := s.mappingRepo.UpsertMapping(ctx, mapping); err != nil {
		return nil, err
	}
	return &mapping, nil
}

// ListMappings retrieves all mappings for a user.
func (s *categoryService) ListMappings(ctx context.Context, userID string) ([]domain.CategoryMapping, error) {
	return s.mappingRepo.ListMappings(ctx, userID)
}
