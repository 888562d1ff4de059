package dto

import (
	"github.com/shopspring/decimal"

	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
)

// TaxSummaryParams defines query parameters for the deduction summary.
type TaxSummaryParams struct {
	Year   int    `form:"year" binding:"required,min=2000,max=2100"`
	Canton string `form:"canton" binding:"required,len=2"`
}

// CategoryDeductionResponse is the deductible position of one category.
type CategoryDeductionResponse struct {
	CategoryCode     string          `json:"categoryCode"`
	GrossAmount      decimal.Decimal `json:"grossAmount"`
	Claimed          decimal.Decimal `json:"claimed"`
	DeductibleAmount decimal.Decimal `json:"deductibleAmount"`
	ExpenseCount     int             `json:"expenseCount"`
	LimitApplied     bool            `json:"limitApplied"`
}

// TaxSummaryResponse is the deduction summary for one (year, canton).
type TaxSummaryResponse struct {
	Year                 int                                  `json:"year"`
	Canton               string                               `json:"canton"`
	DeductionsByCategory map[string]CategoryDeductionResponse `json:"deductionsByCategory"`
	TotalExpenses        decimal.Decimal                      `json:"totalExpenses"`
	TotalDeductible      decimal.Decimal                      `json:"totalDeductible"`
	EstimatedTaxSavings  decimal.Decimal                      `json:"estimatedTaxSavings"`
	Warnings             []string                             `json:"warnings,omitempty"`
}

// ToTaxSummaryResponse converts a domain.TaxSummary to TaxSummaryResponse DTO
func ToTaxSummaryResponse(s *domain.TaxSummary) TaxSummaryResponse {
	byCategory := make(map[string]CategoryDeductionResponse, len(s.DeductionsByCategory))
	for code, d := range s.DeductionsByCategory {
		byCategory[code] = CategoryDeductionResponse{
			CategoryCode:     d.CategoryCode,
			GrossAmount:      d.GrossAmount,
			Claimed:          d.Claimed,
			DeductibleAmount: d.DeductibleAmount,
			ExpenseCount:     d.ExpenseCount,
			LimitApplied:     d.LimitApplied,
		}
	}
	return TaxSummaryResponse{
		Year:                 s.Year,
		Canton:               s.Canton,
		DeductionsByCategory: byCategory,
		TotalExpenses:        s.TotalExpenses,
		TotalDeductible:      s.TotalDeductible,
		EstimatedTaxSavings:  s.EstimatedTaxSavings,
		Warnings:             s.Warnings,
	}
}
