package dto

import (
	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
)

// ReconcileRequest defines the period and strategy for a reconciliation run.
type ReconcileRequest struct {
	PeriodStart string               `json:"periodStart" binding:"required,datetime=2006-01-02"`
	PeriodEnd   string               `json:"periodEnd" binding:"required,datetime=2006-01-02"`
	Strategy    domain.MatchStrategy `json:"strategy" binding:"omitempty,oneof=amount_date_merchant amount_date_reference amount_date_only"`
	// AutoAccept controls whether high-scoring candidates are committed
	// without review. Defaults to true when omitted.
	AutoAccept *bool `json:"autoAccept"`
}

// RejectMatchRequest carries the optional reason for rejecting a candidate.
type RejectMatchRequest struct {
	Reason string `json:"reason"`
}

// ComponentScoresResponse exposes the per-signal scores behind a match.
type ComponentScoresResponse struct {
	Amount    float64 `json:"amount"`
	Date      float64 `json:"date"`
	Merchant  float64 `json:"merchant"`
	Reference float64 `json:"reference"`
}

// MatchResponse defines the data returned for a match candidate.
type MatchResponse struct {
	MatchID         string                  `json:"matchID"`
	SessionID       string                  `json:"sessionID"`
	ExpenseID       string                  `json:"expenseID"`
	TransactionID   string                  `json:"transactionID"`
	Strategy        domain.MatchStrategy    `json:"strategy"`
	Score           float64                 `json:"score"`
	ComponentScores ComponentScoresResponse `json:"componentScores"`
	Decision        domain.MatchDecision    `json:"decision"`
	RejectReason    string                  `json:"rejectReason,omitempty"`
}

// ToMatchResponse converts a domain.MatchCandidate to MatchResponse DTO
func ToMatchResponse(m *domain.MatchCandidate) MatchResponse {
	return MatchResponse{
		MatchID:       m.MatchID,
		SessionID:     m.SessionID,
		ExpenseID:     m.ExpenseID,
		TransactionID: m.TransactionID,
		Strategy:      m.Strategy,
		Score:         m.Score,
		ComponentScores: ComponentScoresResponse{
			Amount:    m.ComponentScores.Amount,
			Date:      m.ComponentScores.Date,
			Merchant:  m.ComponentScores.Merchant,
			Reference: m.ComponentScores.Reference,
		},
		Decision:     m.Decision,
		RejectReason: m.RejectReason,
	}
}

// ToListMatchResponse converts a slice of domain.MatchCandidate to DTOs
func ToListMatchResponse(matches []domain.MatchCandidate) []MatchResponse {
	res := make([]MatchResponse, len(matches))
	for i := range matches {
		res[i] = ToMatchResponse(&matches[i])
	}
	return res
}

// SessionResponse defines the data returned for a reconciliation session.
type SessionResponse struct {
	SessionID      string               `json:"sessionID"`
	PeriodStart    string               `json:"periodStart"`
	PeriodEnd      string               `json:"periodEnd"`
	Strategy       domain.MatchStrategy `json:"strategy"`
	ExactCount     int                  `json:"exactCount"`
	ProbableCount  int                  `json:"probableCount"`
	UnmatchedCount int                  `json:"unmatchedCount"`
}

// ToSessionResponse converts a domain.ReconciliationSession to SessionResponse DTO
func ToSessionResponse(s *domain.ReconciliationSession) SessionResponse {
	return SessionResponse{
		SessionID:      s.SessionID,
		PeriodStart:    s.PeriodStart.Format("2006-01-02"),
		PeriodEnd:      s.PeriodEnd.Format("2006-01-02"),
		Strategy:       s.Strategy,
		ExactCount:     s.ExactCount,
		ProbableCount:  s.ProbableCount,
		UnmatchedCount: s.UnmatchedCount,
	}
}

// ToListSessionResponse converts a slice of domain.ReconciliationSession to DTOs
func ToListSessionResponse(sessions []domain.ReconciliationSession) []SessionResponse {
	res := make([]SessionResponse, len(sessions))
	for i := range sessions {
		res[i] = ToSessionResponse(&sessions[i])
	}
	return res
}

// ReconciliationRunResponse summarizes one completed run.
type ReconciliationRunResponse struct {
	Session      SessionResponse `json:"session"`
	AutoAccepted []MatchResponse `json:"autoAccepted"`
	Pending      []MatchResponse `json:"pending"`
}

// ReconciliationOverviewResponse aggregates a user's match decisions across
// all sessions.
type ReconciliationOverviewResponse struct {
	AcceptedCount int     `json:"acceptedCount"`
	PendingCount  int     `json:"pendingCount"`
	RejectedCount int     `json:"rejectedCount"`
	AverageScore  float64 `json:"averageScore"`
	// RecentSessions holds the latest runs, newest first.
	RecentSessions []SessionResponse `json:"recentSessions"`
}

// SessionSummaryResponse returns a session together with all its candidates.
type SessionSummaryResponse struct {
	Session SessionResponse `json:"session"`
	Matches []MatchResponse `json:"matches"`
}

// ListSessionsParams defines query parameters for listing sessions.
type ListSessionsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}
