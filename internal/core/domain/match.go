package domain

import "time"

// MatchStrategy selects the scoring weight profile for a reconciliation run.
type MatchStrategy string

const (
	StrategyAmountDateMerchant  MatchStrategy = "amount_date_merchant"
	StrategyAmountDateReference MatchStrategy = "amount_date_reference"
	StrategyAmountDateOnly      MatchStrategy = "amount_date_only"
)

// ScoreWeights are the component weights used to combine component scores into
// a composite match score. Weights sum to 1 for each built-in strategy.
type ScoreWeights struct {
	Amount    float64 `json:"amount"`
	Date      float64 `json:"date"`
	Merchant  float64 `json:"merchant"`
	Reference float64 `json:"reference"`
}

// WeightsFor returns the weight profile for a strategy. Unknown strategies
// fall back to the amount/date/merchant profile.
func WeightsFor(strategy MatchStrategy) ScoreWeights {
	switch strategy {
	case StrategyAmountDateOnly:
		return ScoreWeights{Amount: 0.7, Date: 0.3}
	case StrategyAmountDateReference:
		return ScoreWeights{Amount: 0.4, Date: 0.3, Reference: 0.3}
	default:
		return ScoreWeights{Amount: 0.5, Date: 0.25, Merchant: 0.15, Reference: 0.1}
	}
}

// MatchDecision is the state of a match candidate.
//
// State machine: generated -> {auto_accepted | pending} -> {accepted | rejected}.
// auto_accepted, accepted and rejected are terminal.
type MatchDecision string

const (
	DecisionGenerated    MatchDecision = "generated"
	DecisionAutoAccepted MatchDecision = "auto_accepted"
	DecisionPending      MatchDecision = "pending"
	DecisionAccepted     MatchDecision = "accepted"
	DecisionRejected     MatchDecision = "rejected"
)

// Terminal reports whether d permits no further transitions.
func (d MatchDecision) Terminal() bool {
	return d == DecisionAutoAccepted || d == DecisionAccepted || d == DecisionRejected
}

// Accepted reports whether d links its expense and transaction for the
// purposes of the bijective-matching invariant.
func (d MatchDecision) Accepted() bool {
	return d == DecisionAutoAccepted || d == DecisionAccepted
}

// ComponentScores holds the per-signal scores behind a composite match score,
// kept so every match decision is explainable.
type ComponentScores struct {
	Amount    float64 `json:"amount"`
	Date      float64 `json:"date"`
	Merchant  float64 `json:"merchant"`
	Reference float64 `json:"reference"`
}

// MatchCandidate is a proposed expense-transaction pairing produced by a
// reconciliation run. Once resolved it is terminal and is never regenerated.
type MatchCandidate struct {
	MatchID         string          `json:"matchID"`
	SessionID       string          `json:"sessionID"`
	ExpenseID       string          `json:"expenseID"`
	TransactionID   string          `json:"transactionID"`
	Strategy        MatchStrategy   `json:"strategy"`
	Score           float64         `json:"score"`
	ComponentScores ComponentScores `json:"componentScores"`
	Decision        MatchDecision   `json:"decision"`
	RejectReason    string          `json:"rejectReason,omitempty"`
	AuditFields
}

// ReconciliationSession records one batch run over a period. It is read-only
// after creation except for pending-resolution counters.
type ReconciliationSession struct {
	SessionID   string        `json:"sessionID"`
	UserID      string        `json:"userID"`
	PeriodStart time.Time     `json:"periodStart"`
	PeriodEnd   time.Time     `json:"periodEnd"`
	Strategy    MatchStrategy `json:"strategy"`
	// Counts per disposition at creation time.
	ExactCount     int `json:"exactCount"` // auto-accepted
	ProbableCount  int `json:"probableCount"`
	UnmatchedCount int `json:"unmatchedCount"`
	AuditFields
}
