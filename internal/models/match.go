package models

import "time"

// MatchCandidate represents one proposed expense-transaction pairing.
// Partial unique indexes on (expense_id) and (transaction_id) over accepted
// decisions enforce that each side is claimed at most once.
type MatchCandidate struct {
	MatchID        string  `db:"match_id"`
	SessionID      string  `db:"session_id"`
	ExpenseID      string  `db:"expense_id"`
	TransactionID  string  `db:"transaction_id"`
	Strategy       string  `db:"strategy"`
	Score          float64 `db:"score"`
	AmountScore    float64 `db:"amount_score"`
	DateScore      float64 `db:"date_score"`
	MerchantScore  float64 `db:"merchant_score"`
	ReferenceScore float64 `db:"reference_score"`
	Decision       string  `db:"decision"`
	RejectReason   string  `db:"reject_reason"` // Nullable
	AuditFields
}

// ReconciliationSession represents one batch matching run.
type ReconciliationSession struct {
	SessionID      string    `db:"session_id"`
	UserID         string    `db:"user_id"`
	PeriodStart    time.Time `db:"period_start"`
	PeriodEnd      time.Time `db:"period_end"`
	Strategy       string    `db:"strategy"`
	ExactCount     int       `db:"exact_count"`
	ProbableCount  int       `db:"probable_count"`
	UnmatchedCount int       `db:"unmatched_count"`
	AuditFields
}
