package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchStatus tracks an expense's position in the reconciliation lifecycle.
type MatchStatus string

const (
	MatchStatusUnmatched MatchStatus = "unmatched"
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusMatched   MatchStatus = "matched"
	MatchStatusRejected  MatchStatus = "rejected"
)

// Expense represents one bookkeeping entry, produced by the document-parsing
// collaborator or entered manually. CategoryCode and BusinessPercentage are
// mutated by category mapping or user override; MatchStatus is mutated only by
// the reconciliation engine.
type Expense struct {
	ExpenseID           string          `json:"expenseID"`
	UserID              string          `json:"userID"`
	MerchantText        string          `json:"merchantText"`
	CanonicalMerchantID string          `json:"canonicalMerchantID,omitempty"`
	AmountCHF           decimal.Decimal `json:"amountCHF"`
	Date                time.Time       `json:"date"`
	CategoryCode        string          `json:"categoryCode"`
	CategoryConfidence  float64         `json:"categoryConfidence"`
	// BusinessPercentage is the business-use share in [0,100]. The deductible
	// contribution is AmountCHF * BusinessPercentage / 100 before limits.
	BusinessPercentage int         `json:"businessPercentage"`
	Reference          string      `json:"reference,omitempty"`
	Notes              string      `json:"notes,omitempty"`
	MatchStatus        MatchStatus `json:"matchStatus"`
	AuditFields
}

// DeductibleAmount returns the pre-limit deductible contribution of the
// expense, applying the mixed-use business percentage.
func (e Expense) DeductibleAmount() decimal.Decimal {
	if e.BusinessPercentage <= 0 {
		return decimal.Zero
	}
	pct := decimal.NewFromInt(int64(e.BusinessPercentage))
	return e.AmountCHF.Mul(pct).Div(decimal.NewFromInt(100))
}
