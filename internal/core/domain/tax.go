package domain

import "github.com/shopspring/decimal"

// CategoryDeduction aggregates the deductible position of one category for a
// tax year. DeductibleAmount is always limit-clamped (never exceeds the
// applicable rule limit); Claimed keeps the pre-clamp sum for transparency.
type CategoryDeduction struct {
	CategoryCode     string          `json:"categoryCode"`
	GrossAmount      decimal.Decimal `json:"grossAmount"`      // sum of expense amounts
	Claimed          decimal.Decimal `json:"claimed"`          // sum after business percentage
	DeductibleAmount decimal.Decimal `json:"deductibleAmount"` // after limit clamping
	ExpenseCount     int             `json:"expenseCount"`
	LimitApplied     bool            `json:"limitApplied"`
}

// TaxSummary is the result of a deduction calculation for one (year, canton).
// EstimatedTaxSavings is a configuration-rate estimate, not a legal tax
// computation.
type TaxSummary struct {
	Year                 int                          `json:"year"`
	Canton               string                       `json:"canton"`
	DeductionsByCategory map[string]CategoryDeduction `json:"deductionsByCategory"`
	TotalExpenses        decimal.Decimal              `json:"totalExpenses"`
	TotalDeductible      decimal.Decimal              `json:"totalDeductible"`
	EstimatedTaxSavings  decimal.Decimal              `json:"estimatedTaxSavings"`
	Warnings             []string                     `json:"warnings"`
}
