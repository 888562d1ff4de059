package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
)

// MatchReader defines read operations for reconciliation match candidates
type MatchReader interface {
	// FindMatchByID retrieves a match candidate by its unique identifier.
	FindMatchByID(ctx context.Context, matchID string) (*domain.MatchCandidate, error)

	// ListMatchesBySession retrieves all candidates created by one run.
	ListMatchesBySession(ctx context.Context, sessionID string) ([]domain.MatchCandidate, error)

	// ListPendingMatches retrieves a user's unresolved candidates.
	ListPendingMatches(ctx context.Context, userID string) ([]domain.MatchCandidate, error)

	// ListRejectedPairs returns the (expenseID, transactionID) pairs the user
	// has rejected, so later runs never propose them again.
	ListRejectedPairs(ctx context.Context, userID string) (map[[2]string]bool, error)

	// ListAcceptedMatches retrieves a user's accepted candidates.
	ListAcceptedMatches(ctx context.Context, userID string) ([]domain.MatchCandidate, error)
}

// MatchWriter defines write operations for reconciliation match candidates
type MatchWriter interface {
	// SaveMatchesInTx bulk-inserts candidates inside a run commit transaction.
	SaveMatchesInTx(ctx context.Context, tx pgx.Tx, matches []domain.MatchCandidate) error

	// UpdateMatchDecision resolves a pending candidate.
	UpdateMatchDecision(ctx context.Context, matchID string, decision domain.MatchDecision, reason string, userID string, now time.Time) error
}

// SessionReader defines read operations for reconciliation sessions
type SessionReader interface {
	// FindSessionByID retrieves a session by its unique identifier.
	FindSessionByID(ctx context.Context, sessionID string) (*domain.ReconciliationSession, error)

	// ListSessions retrieves a paginated list of a user's sessions.
	ListSessions(ctx context.Context, userID string, limit int, offset int) ([]domain.ReconciliationSession, error)
}

// SessionWriter defines write operations for reconciliation sessions
type SessionWriter interface {
	// SaveSessionInTx persists a new session inside a run commit transaction.
	SaveSessionInTx(ctx context.Context, tx pgx.Tx, session domain.ReconciliationSession) error
}

// MatchRepositoryFacade combines all reconciliation-related repository interfaces
type MatchRepositoryFacade interface {
	MatchReader
	MatchWriter
	SessionReader
	SessionWriter
	TransactionManager
}
