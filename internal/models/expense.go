package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense represents one bookkeeping entry awaiting reconciliation.
type Expense struct {
	ExpenseID           string          `db:"expense_id"`
	UserID              string          `db:"user_id"`
	MerchantText        string          `db:"merchant_text"`
	CanonicalMerchantID string          `db:"canonical_merchant_id"` // Nullable FK
	AmountCHF           decimal.Decimal `db:"amount_chf"`
	Date                time.Time       `db:"expense_date"`
	CategoryCode        string          `db:"category_code"`
	CategoryConfidence  float64         `db:"category_confidence"`
	BusinessPercentage  int             `db:"business_percentage"`
	Reference           string          `db:"reference"`
	Notes               string          `db:"notes"`
	MatchStatus         string          `db:"match_status"`
	AuditFields
}
