package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/silvioiatech/umbra-accountant/internal/apperrors"
	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
	portsrepo "github.com/silvioiatech/umbra-accountant/internal/core/ports/repositories"
	"github.com/silvioiatech/umbra-accountant/internal/models"
)

type PgxMatchRepository struct {
	BaseRepository
}

// newPgxMatchRepository creates a new repository for reconciliation data.
func newPgxMatchRepository(pool *pgxpool.Pool) portsrepo.MatchRepositoryFacade {
	return &PgxMatchRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxMatchRepository implements portsrepo.MatchRepositoryFacade
var _ portsrepo.MatchRepositoryFacade = (*PgxMatchRepository)(nil)

func toModelMatch(d domain.MatchCandidate) models.MatchCandidate {
	return models.MatchCandidate{
		MatchID:        d.MatchID,
		SessionID:      d.SessionID,
		ExpenseID:      d.ExpenseID,
		TransactionID:  d.TransactionID,
		Strategy:       string(d.Strategy),
		Score:          d.Score,
		AmountScore:    d.ComponentScores.Amount,
		DateScore:      d.ComponentScores.Date,
		MerchantScore:  d.ComponentScores.Merchant,
		ReferenceScore: d.ComponentScores.Reference,
		Decision:       string(d.Decision),
		RejectReason:   d.RejectReason,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainMatch(m models.MatchCandidate) domain.MatchCandidate {
	return domain.MatchCandidate{
		MatchID:       m.MatchID,
		SessionID:     m.SessionID,
		ExpenseID:     m.ExpenseID,
		TransactionID: m.TransactionID,
		Strategy:      domain.MatchStrategy(m.Strategy),
		Score:         m.Score,
		ComponentScores: domain.ComponentScores{
			Amount:    m.AmountScore,
			Date:      m.DateScore,
			Merchant:  m.MerchantScore,
			Reference: m.ReferenceScore,
		},
		Decision:     domain.MatchDecision(m.Decision),
		RejectReason: m.RejectReason,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

// SaveMatchesInTx bulk-inserts candidates inside a run commit transaction.
// The partial unique indexes over accepted decisions surface double-claims
// as ErrAlreadyClaimed.
func (r *PgxMatchRepository) SaveMatchesInTx(ctx context.Context, tx pgx.Tx, matches []domain.MatchCandidate) error {
	query := `
		INSERT INTO reconciliation_matches (match_id, session_id, expense_id, transaction_id, strategy, score, amount_score, date_score, merchant_score, reference_score, decision, reject_reason, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	batch := &pgx.Batch{}
	for _, match := range matches {
		m := toModelMatch(match)
		batch.Queue(query,
			m.MatchID,
			m.SessionID,
			m.ExpenseID,
			m.TransactionID,
			m.Strategy,
			m.Score,
			m.AmountScore,
			m.DateScore,
			m.MerchantScore,
			m.ReferenceScore,
			m.Decision,
			nullableString(m.RejectReason),
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range matches {
		if _, err := results.Exec(); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %v", apperrors.ErrAlreadyClaimed, err)
			}
			return fmt.Errorf("failed to save match batch: %w", err)
		}
	}
	return nil
}

// UpdateMatchDecision resolves a pending candidate.
func (r *PgxMatchRepository) UpdateMatchDecision(ctx context.Context, matchID string, decision domain.MatchDecision, reason string, userID string, now time.Time) error {
	query := `
		UPDATE reconciliation_matches
		SET decision = $2, reject_reason = $3, last_updated_at = $4, last_updated_by = $5
		WHERE match_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, matchID, string(decision), nullableString(reason), now, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", apperrors.ErrAlreadyClaimed, err)
		}
		return fmt.Errorf("failed to update decision on match %s: %w", matchID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindMatchByID retrieves a match candidate by its ID.
func (r *PgxMatchRepository) FindMatchByID(ctx context.Context, matchID string) (*domain.MatchCandidate, error) {
	query := matchSelect + ` WHERE match_id = $1;`
	m, err := scanMatch(r.Pool.QueryRow(ctx, query, matchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find match by ID %s: %w", matchID, err)
	}
	d := toDomainMatch(m)
	return &d, nil
}

// ListMatchesBySession retrieves all candidates created by one run.
func (r *PgxMatchRepository) ListMatchesBySession(ctx context.Context, sessionID string) ([]domain.MatchCandidate, error) {
	query := matchSelect + `
		WHERE session_id = $1
		ORDER BY score DESC, match_id;
	`
	return r.queryMatches(ctx, query, sessionID)
}

// ListPendingMatches retrieves a user's unresolved candidates.
func (r *PgxMatchRepository) ListPendingMatches(ctx context.Context, userID string) ([]domain.MatchCandidate, error) {
	query := matchSelect + `
		WHERE created_by = $1 AND decision = 'pending'
		ORDER BY score DESC, match_id;
	`
	return r.queryMatches(ctx, query, userID)
}

// ListAcceptedMatches retrieves a user's accepted candidates.
func (r *PgxMatchRepository) ListAcceptedMatches(ctx context.Context, userID string) ([]domain.MatchCandidate, error) {
	query := matchSelect + `
		WHERE created_by = $1 AND decision IN ('auto_accepted', 'accepted')
		ORDER BY match_id;
	`
	return r.queryMatches(ctx, query, userID)
}

// ListRejectedPairs returns the pairs the user has rejected.
func (r *PgxMatchRepository) ListRejectedPairs(ctx context.Context, userID string) (map[[2]string]bool, error) {
	query := `
		SELECT expense_id, transaction_id
		FROM reconciliation_matches
		WHERE created_by = $1 AND decision = 'rejected';
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rejected pairs for user %s: %w", userID, err)
	}
	defer rows.Close()

	pairs := make(map[[2]string]bool)
	for rows.Next() {
		var expenseID, transactionID string
		if err := rows.Scan(&expenseID, &transactionID); err != nil {
			return nil, fmt.Errorf("failed to scan rejected pair: %w", err)
		}
		pairs[[2]string{expenseID, transactionID}] = true
	}
	return pairs, rows.Err()
}

func (r *PgxMatchRepository) queryMatches(ctx context.Context, query string, args ...any) ([]domain.MatchCandidate, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []domain.MatchCandidate
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, toDomainMatch(m))
	}
	return matches, rows.Err()
}

const matchSelect = `
	SELECT match_id, session_id, expense_id, transaction_id, strategy, score, amount_score, date_score, merchant_score, reference_score, decision, reject_reason, created_at, created_by, last_updated_at, last_updated_by
	FROM reconciliation_matches`

func scanMatch(row pgx.Row) (models.MatchCandidate, error) {
	var m models.MatchCandidate
	var reason sql.NullString
	err := row.Scan(
		&m.MatchID,
		&m.SessionID,
		&m.ExpenseID,
		&m.TransactionID,
		&m.Strategy,
		&m.Score,
		&m.AmountScore,
		&m.DateScore,
		&m.MerchantScore,
		&m.ReferenceScore,
		&m.Decision,
		&reason,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	m.RejectReason = reason.String
	return m, err
}

// SaveSessionInTx persists a new session inside a run commit transaction.
func (r *PgxMatchRepository) SaveSessionInTx(ctx context.Context, tx pgx.Tx, session domain.ReconciliationSession) error {
	query := `
		INSERT INTO reconciliation_sessions (session_id, user_id, period_start, period_end, strategy, exact_count, probable_count, unmatched_count, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := tx.Exec(ctx, query,
		session.SessionID,
		session.UserID,
		session.PeriodStart,
		session.PeriodEnd,
		string(session.Strategy),
		session.ExactCount,
		session.ProbableCount,
		session.UnmatchedCount,
		session.CreatedAt,
		session.CreatedBy,
		session.LastUpdatedAt,
		session.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: session with ID %s already exists", apperrors.ErrDuplicate, session.SessionID)
		}
		return fmt.Errorf("failed to save session %s: %w", session.SessionID, err)
	}
	return nil
}

// FindSessionByID retrieves a session by its ID.
func (r *PgxMatchRepository) FindSessionByID(ctx context.Context, sessionID string) (*domain.ReconciliationSession, error) {
	query := sessionSelect + ` WHERE session_id = $1;`
	s, err := scanSession(r.Pool.QueryRow(ctx, query, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find session by ID %s: %w", sessionID, err)
	}
	return &s, nil
}

// ListSessions retrieves a paginated list of a user's sessions.
func (r *PgxMatchRepository) ListSessions(ctx context.Context, userID string, limit int, offset int) ([]domain.ReconciliationSession, error) {
	query := sessionSelect + `
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for user %s: %w", userID, err)
	}
	defer rows.Close()

	var sessions []domain.ReconciliationSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

const sessionSelect = `
	SELECT session_id, user_id, period_start, period_end, strategy, exact_count, probable_count, unmatched_count, created_at, created_by, last_updated_at, last_updated_by
	FROM reconciliation_sessions`

func scanSession(row pgx.Row) (domain.ReconciliationSession, error) {
	var m models.ReconciliationSession
	err := row.Scan(
		&m.SessionID,
		&m.UserID,
		&m.PeriodStart,
		&m.PeriodEnd,
		&m.Strategy,
		&m.ExactCount,
		&m.ProbableCount,
		&m.UnmatchedCount,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return domain.ReconciliationSession{
		SessionID:      m.SessionID,
		UserID:         m.UserID,
		PeriodStart:    m.PeriodStart,
		PeriodEnd:      m.PeriodEnd,
		Strategy:       domain.MatchStrategy(m.Strategy),
		ExactCount:     m.ExactCount,
		ProbableCount:  m.ProbableCount,
		UnmatchedCount: m.UnmatchedCount,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}, err
}
