package services

import (
	"context"

	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
	"github.com/silvioiatech/umbra-accountant/internal/dto"
)

// ReconciliationRunnerSvc runs batch expense-transaction matching
type ReconciliationRunnerSvc interface {
	// RunReconciliation matches the user's unmatched expenses against
	// transactions in the requested period and commits the results
	// atomically. Runs for the same user are serialized.
	RunReconciliation(ctx context.Context, userID string, req dto.ReconcileRequest) (*dto.ReconciliationRunResponse, error)
}

// MatchResolutionSvc resolves pending match candidates
type MatchResolutionSvc interface {
	// ListPendingMatches retrieves the user's unresolved candidates.
	ListPendingMatches(ctx context.Context, userID string) ([]domain.MatchCandidate, error)

	// ConfirmMatch accepts a pending candidate.
	ConfirmMatch(ctx context.Context, userID string, matchID string) (*domain.MatchCandidate, error)

	// RejectMatch rejects a pending candidate; the pair is excluded from all
	// future runs and the expense returns to the unmatched pool.
	RejectMatch(ctx context.Context, userID string, matchID string, reason string) (*domain.MatchCandidate, error)
}

// ReconciliationReaderSvc defines read operations for sessions
type ReconciliationReaderSvc interface {
	// GetSession retrieves a session by its unique identifier.
	GetSession(ctx context.Context, userID string, sessionID string) (*domain.ReconciliationSession, error)

	// ListSessions retrieves a paginated list of the user's sessions.
	ListSessions(ctx context.Context, userID string, limit int, offset int) ([]domain.ReconciliationSession, error)

	// SessionSummary returns the session together with its candidates.
	SessionSummary(ctx context.Context, userID string, sessionID string) (*dto.SessionSummaryResponse, error)

	// Overview aggregates the user's match decisions across all sessions.
	Overview(ctx context.Context, userID string) (*dto.ReconciliationOverviewResponse, error)
}

// ReconciliationSvcFacade combines all reconciliation service interfaces
type ReconciliationSvcFacade interface {
	ReconciliationRunnerSvc
	MatchResolutionSvc
	ReconciliationReaderSvc
}
