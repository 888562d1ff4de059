package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/silvioiatech/umbra-accountant/internal/apperrors"
	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
	portsrepo "github.com/silvioiatech/umbra-accountant/internal/core/ports/repositories"
	portssvc "github.com/silvioiatech/umbra-accountant/internal/core/ports/services"
	"github.com/silvioiatech/umbra-accountant/internal/dto"
	"github.com/silvioiatech/umbra-accountant/internal/utils/textsim"
)

// merchantService implements the MerchantSvcFacade interface
type merchantService struct {
	BaseService
	merchantRepo        portsrepo.MerchantRepositoryFacade
	similarityThreshold float64
	aliasLearnThreshold float64
}

// MerchantServiceOption is a functional option for configuring the merchant service
type MerchantServiceOption func(*merchantService)

// WithSimilarityThreshold sets the minimum fuzzy score to resolve to an
// existing merchant.
func WithSimilarityThreshold(threshold float64) MerchantServiceOption {
	return func(s *merchantService) {
		s.similarityThreshold = threshold
	}
}

// WithAliasLearnThreshold sets the minimum fuzzy score at which the raw text
// is learned as a new alias of the resolved merchant.
func WithAliasLearnThreshold(threshold float64) MerchantServiceOption {
	return func(s *merchantService) {
		s.aliasLearnThreshold = threshold
	}
}

// NewMerchantService creates a new merchant service with the provided options.
func NewMerchantService(repo portsrepo.MerchantRepositoryFacade, options ...MerchantServiceOption) portssvc.MerchantSvcFacade {
	svc := &merchantService{
		merchantRepo:        repo,
		similarityThreshold: 0.80,
		aliasLearnThreshold: 0.90,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure merchantService implements the MerchantSvcFacade interface
var _ portssvc.MerchantSvcFacade = (*merchantService)(nil)

// ResolveMerchant maps raw merchant text to a canonical merchant.
//
// Resolution ladder: exact VAT number, then exact normalized alias, then the
// best fuzzy alias above the similarity threshold. When nothing clears the
// threshold a new merchant is created from the raw text.
func (s *merchantService) ResolveMerchant(ctx context.Context, userID string, rawText string) (*domain.CanonicalMerchant, float64, error) {
	normalized := domain.NormalizeMerchantText(rawText)
	if normalized == "" {
		return nil, 0, fmt.Errorf("%w: merchant text is empty after normalization", apperrors.ErrValidation)
	}

	// VAT numbers are authoritative when the raw text carries one.
	if vat := domain.ExtractVATNumber(rawText); vat != "" {
		merchant, err := s.merchantRepo.FindMerchantByVAT(ctx, vat)
		if err == nil {
			return merchant, 1.0, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, 0, err
		}
	}

	merchant, err := s.merchantRepo.FindMerchantByAlias(ctx, normalized)
	if err == nil {
		return merchant, 1.0, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, 0, err
	}

	best, bestScore, err := s.bestFuzzyMatch(ctx, normalized)
	if err != nil {
		return nil, 0, err
	}
	if best != nil && bestScore >= s.similarityThreshold {
		if bestScore >= s.aliasLearnThreshold && !best.HasAlias(normalized) {
			now := time.Now()
			if err := s.merchantRepo.AddMerchantAlias(ctx, best.MerchantID, rawText, userID, now); err != nil {
				// Losing a learned alias is not worth failing the resolution.
				s.LogWarn(ctx, "Alias learning failed",
					slog.String("merchant_id", best.MerchantID),
					slog.String("alias", rawText),
					slog.String("error", err.Error()))
			} else {
				best.Aliases = append(best.Aliases, rawText)
			}
		}
		return best, bestScore, nil
	}

	created, err := s.createFromRawText(ctx, userID, rawText)
	if err != nil {
		return nil, 0, err
	}
	s.LogInfo(ctx, "New merchant created from unresolved text",
		slog.String("merchant_id", created.MerchantID),
		slog.String("display_name", created.DisplayName))
	return created, 1.0, nil
}

// bestFuzzyMatch scans known aliases for the highest similarity to the
// normalized text.
func (s *merchantService) bestFuzzyMatch(ctx context.Context, normalized string) (*domain.CanonicalMerchant, float64, error) {
	const pageSize = 500
	var best *domain.CanonicalMerchant
	var bestScore float64

	for offset := 0; ; offset += pageSize {
		merchants, err := s.merchantRepo.ListMerchants(ctx, pageSize, offset)
		if err != nil {
			return nil, 0, err
		}
		for i := range merchants {
			m := &merchants[i]
			candidates := append([]string{m.DisplayName}, m.Aliases...)
			for _, candidate := range candidates {
				score := textsim.Similarity(normalized, domain.NormalizeMerchantText(candidate))
				if score > bestScore {
					bestScore = score
					clone := *m
					best = &clone
				}
			}
		}
		if len(merchants) < pageSize {
			break
		}
	}
	return best, bestScore, nil
}

func (s *merchantService) createFromRawText(ctx context.Context, userID string, rawText string) (*domain.CanonicalMerchant, error) {
	now := time.Now()
	merchant := domain.CanonicalMerchant{
		MerchantID:  uuid.NewString(),
		DisplayName: rawText,
		VATNumber:   domain.ExtractVATNumber(rawText),
		Aliases:     []string{rawText},
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.merchantRepo.SaveMerchant(ctx, merchant); err != nil {
		// Either a concurrent resolution created the same merchant, or the
		// normalized text already exists as an alias of another merchant.
		// The alias lookup resolves to the owning merchant in both cases.
		if errors.Is(err, apperrors.ErrDuplicate) {
			return s.merchantRepo.FindMerchantByAlias(ctx, domain.NormalizeMerchantText(rawText))
		}
		return nil, err
	}
	return &merchant, nil
}

// GetMerchantByID retrieves a merchant by its unique identifier.
func (s *merchantService) GetMerchantByID(ctx context.Context, merchantID string) (*domain.CanonicalMerchant, error) {
	return s.merchantRepo.FindMerchantByID(ctx, merchantID)
}

// ListMerchants retrieves a paginated list of merchants.
func (s *merchantService) ListMerchants(ctx context.Context, limit int, offset int) ([]domain.CanonicalMerchant, error) {
	return s.merchantRepo.ListMerchants(ctx, limit, offset)
}

// CreateMerchant persists a new canonical merchant.
func (s *merchantService) CreateMerchant(ctx context.Context, userID string, req dto.CreateMerchantRequest) (*domain.CanonicalMerchant, error) {
	if req.VATNumber != "" && !domain.ValidVATNumber(req.VATNumber) {
		return nil, fmt.Errorf("%w: malformed VAT number %q", apperrors.ErrValidation, req.VATNumber)
	}

	now := time.Now()
	aliases := req.Aliases
	if len(aliases) == 0 {
		aliases = []string{req.DisplayName}
	}
	merchant := domain.CanonicalMerchant{
		MerchantID:  uuid.NewString(),
		DisplayName: req.DisplayName,
		VATNumber:   req.VATNumber,
		Aliases:     aliases,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.merchantRepo.SaveMerchant(ctx, merchant); err != nil {
		return nil, err
	}
	return &merchant, nil
}
