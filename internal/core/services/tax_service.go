package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/silvioiatech/umbra-accountant/internal/apperrors"
	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
	portsrepo "github.com/silvioiatech/umbra-accountant/internal/core/ports/repositories"
	portssvc "github.com/silvioiatech/umbra-accountant/internal/core/ports/services"
	"github.com/silvioiatech/umbra-accountant/internal/platform/rules"
)

// taxService implements the TaxSvcFacade interface
type taxService struct {
	BaseService
	expenseRepo         portsrepo.ExpenseRepositoryFacade
	ruleSet             *rules.RuleSet
	assumedMarginalRate decimal.Decimal
}

// TaxServiceOption configures optional parameters for the service.
type TaxServiceOption func(*taxService)

// WithRuleSet overrides the built-in deduction rule table.
func WithRuleSet(rs *rules.RuleSet) TaxServiceOption {
	return func(s *taxService) {
		if rs != nil {
			s.ruleSet = rs
		}
	}
}

// WithAssumedMarginalRate overrides the rate used for the savings estimate.
func WithAssumedMarginalRate(rate float64) TaxServiceOption {
	return func(s *taxService) {
		if rate > 0 {
			s.assumedMarginalRate = decimal.NewFromFloat(rate)
		}
	}
}

// NewTaxService creates a new tax calculation service.
func NewTaxService(expenseRepo portsrepo.ExpenseRepositoryFacade, opts ...TaxServiceOption) portssvc.TaxSvcFacade {
	svc := &taxService{
		expenseRepo:         expenseRepo,
		ruleSet:             rules.Default(),
		assumedMarginalRate: decimal.NewFromFloat(0.25),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Ensure taxService implements the TaxSvcFacade interface
var _ portssvc.TaxSvcFacade = (*taxService)(nil)

// CalculateDeductions aggregates the user's expenses for a calendar year into
// per-category deductible amounts, clamped to the federal limit plus the
// canton supplement. The savings figure is an estimate from a configured
// marginal rate, not a legal tax computation.
func (s *taxService) CalculateDeductions(ctx context.Context, userID string, year int, canton string) (*domain.TaxSummary, error) {
	if !rules.ValidCanton(canton) {
		return nil, fmt.Errorf("%w: unknown canton %q", apperrors.ErrValidation, canton)
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	expenses, err := s.expenseRepo.ListExpensesInPeriod(ctx, userID, from, to)
	if err != nil {
		s.LogError(ctx, err, "failed to list expenses for tax calculation", "userID", userID, "year", year)
		return nil, err
	}

	summary := &domain.TaxSummary{
		Year:                 year,
		Canton:               canton,
		DeductionsByCategory: make(map[string]domain.CategoryDeduction),
	}

	ruleYear := s.ruleSet.RuleYear(year)

	privateUse := make(map[string]int)
	for _, expense := range expenses {
		summary.TotalExpenses = summary.TotalExpenses.Add(expense.AmountCHF)
		if expense.CategoryCode == "" || expense.CategoryCode == domain.CategoryNonDeductible {
			continue
		}
		// Business-only categories claim nothing from purely private use.
		if expense.BusinessPercentage <= 0 && s.ruleSet.BusinessOnly(expense.CategoryCode, ruleYear) {
			privateUse[expense.CategoryCode]++
			continue
		}
		d := summary.DeductionsByCategory[expense.CategoryCode]
		d.CategoryCode = expense.CategoryCode
		d.GrossAmount = d.GrossAmount.Add(expense.AmountCHF)
		d.Claimed = d.Claimed.Add(expense.DeductibleAmount())
		d.ExpenseCount++
		summary.DeductionsByCategory[expense.CategoryCode] = d
	}

	categories := make([]string, 0, len(summary.DeductionsByCategory))
	for category := range summary.DeductionsByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		d := summary.DeductionsByCategory[category]
		d.DeductibleAmount = d.Claimed
		if limit, limited := s.ruleSet.Limit(category, canton, ruleYear); limited && d.Claimed.GreaterThan(limit) {
			d.DeductibleAmount = limit
			d.LimitApplied = true
			summary.Warnings = append(summary.Warnings, fmt.Sprintf(
				"%s: claimed CHF %s exceeds the %s limit of CHF %s; deduction capped",
				category, d.Claimed.StringFixed(2), canton, limit.StringFixed(2)))
		}
		summary.DeductionsByCategory[category] = d
		summary.TotalDeductible = summary.TotalDeductible.Add(d.DeductibleAmount)
	}

	privateCategories := make([]string, 0, len(privateUse))
	for category := range privateUse {
		privateCategories = append(privateCategories, category)
	}
	sort.Strings(privateCategories)
	for _, category := range privateCategories {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf(
			"%s: %d expense(s) without business use excluded from this business-only deduction",
			category, privateUse[category]))
	}

	summary.EstimatedTaxSavings = summary.TotalDeductible.Mul(s.assumedMarginalRate).Round(2)
	return summary, nil
}
