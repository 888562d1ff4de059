package services

import (
	"context"

	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
)

// TaxSvcFacade calculates Swiss deduction summaries
type TaxSvcFacade interface {
	// CalculateDeductions aggregates the user's categorized expenses for a
	// tax year, applies federal and cantonal limits and estimates savings.
	CalculateDeductions(ctx context.Context, userID string, year int, canton string) (*domain.TaxSummary, error)
}
