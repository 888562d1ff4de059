package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/silvioiatech/umbra-accountant/internal/apperrors"
	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
	portsrepo "github.com/silvioiatech/umbra-accountant/internal/core/ports/repositories"
	portssvc "github.com/silvioiatech/umbra-accountant/internal/core/ports/services"
	"github.com/silvioiatech/umbra-accountant/internal/dto"
	"github.com/silvioiatech/umbra-accountant/internal/utils/textsim"
)

// reconciliationService implements the ReconciliationSvcFacade interface
type reconciliationService struct {
	BaseService
	matchRepo       portsrepo.MatchRepositoryFacade
	expenseRepo     portsrepo.ExpenseRepositoryFacade
	transactionRepo portsrepo.TransactionRepositoryFacade

	dateWindowDays     int
	amountTolerancePct float64
	autoAcceptScore    float64
	reviewScore        float64

	// runLocks serializes reconciliation runs per user. Runs for different
	// users proceed in parallel.
	runLocks sync.Map // userID -> *sync.Mutex
}

// ReconciliationServiceOption configures optional parameters for the service.
type ReconciliationServiceOption func(*reconciliationService)

// WithDateWindowDays overrides the candidate-generation date window.
func WithDateWindowDays(days int) ReconciliationServiceOption {
	return func(s *reconciliationService) {
		if days > 0 {
			s.dateWindowDays = days
		}
	}
}

// WithAmountTolerance overrides the relative amount difference still treated
// as a rounding-level match.
func WithAmountTolerance(pct float64) ReconciliationServiceOption {
	return func(s *reconciliationService) {
		if pct > 0 {
			s.amountTolerancePct = pct
		}
	}
}

// WithScoreBands overrides the auto-accept and review score thresholds.
func WithScoreBands(autoAccept, review float64) ReconciliationServiceOption {
	return func(s *reconciliationService) {
		if autoAccept > 0 {
			s.autoAcceptScore = autoAccept
		}
		if review > 0 {
			s.reviewScore = review
		}
	}
}

// NewReconciliationService creates a new reconciliation service.
func NewReconciliationService(
	matchRepo portsrepo.MatchRepositoryFacade,
	expenseRepo portsrepo.ExpenseRepositoryFacade,
	transactionRepo portsrepo.TransactionRepositoryFacade,
	opts ...ReconciliationServiceOption,
) portssvc.ReconciliationSvcFacade {
	svc := &reconciliationService{
		matchRepo:          matchRepo,
		expenseRepo:        expenseRepo,
		transactionRepo:    transactionRepo,
		dateWindowDays:     3,
		amountTolerancePct: 0.01,
		autoAcceptScore:    0.85,
		reviewScore:        0.5,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Ensure reconciliationService implements the ReconciliationSvcFacade interface
var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

// scoredCandidate pairs a provisional match with its source records during a
// run, before the greedy commit decides which candidates survive.
type scoredCandidate struct {
	expense     *domain.Expense
	transaction *domain.Transaction
	score       float64
	components  domain.ComponentScores
}

// RunReconciliation matches unmatched expenses in the period against imported
// transactions and commits the session, its candidates, and the affected
// expense statuses in a single storage transaction.
func (s *reconciliationService) RunReconciliation(ctx context.Context, userID string, req dto.ReconcileRequest) (*dto.ReconciliationRunResponse, error) {
	logger := s.GetLogger(ctx)

	periodStart, err := time.Parse("2006-01-02", req.PeriodStart)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid period start: %v", apperrors.ErrValidation, err)
	}
	periodEnd, err := time.Parse("2006-01-02", req.PeriodEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid period end: %v", apperrors.ErrValidation, err)
	}
	if periodEnd.Before(periodStart) {
		return nil, fmt.Errorf("%w: period end %s precedes period start %s", apperrors.ErrValidation, req.PeriodEnd, req.PeriodStart)
	}

	strategy := req.Strategy
	if strategy == "" {
		strategy = domain.StrategyAmountDateMerchant
	}
	autoAccept := req.AutoAccept == nil || *req.AutoAccept

	// One run at a time per user. The greedy commit assumes nobody else is
	// claiming this user's expenses or transactions mid-run.
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	expenses, err := s.expenseRepo.ListExpensesInPeriod(ctx, userID, periodStart, periodEnd)
	if err != nil {
		s.LogError(ctx, err, "failed to list expenses for reconciliation", "userID", userID)
		return nil, err
	}

	window := time.Duration(s.dateWindowDays) * 24 * time.Hour
	transactions, err := s.transactionRepo.ListTransactionsInPeriod(ctx, userID, periodStart.Add(-window), periodEnd.Add(window))
	if err != nil {
		s.LogError(ctx, err, "failed to list transactions for reconciliation", "userID", userID)
		return nil, err
	}

	rejectedPairs, err := s.matchRepo.ListRejectedPairs(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "failed to list rejected pairs", "userID", userID)
		return nil, err
	}

	claimedExpenses, claimedTransactions, err := s.claimedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	weights := domain.WeightsFor(strategy)
	var candidates []scoredCandidate
	eligibleExpenses := 0
	for i := range expenses {
		expense := &expenses[i]
		if expense.MatchStatus != domain.MatchStatusUnmatched {
			continue
		}
		if claimedExpenses[expense.ExpenseID] {
			continue
		}
		eligibleExpenses++
		for j := range transactions {
			txn := &transactions[j]
			if claimedTransactions[txn.TransactionID] {
				continue
			}
			if rejectedPairs[[2]string{expense.ExpenseID, txn.TransactionID}] {
				continue
			}
			if !withinDays(expense.Date, txn.BookingDate, s.dateWindowDays) {
				continue
			}
			components := s.scoreComponents(expense, txn)
			if components.Amount == 0 {
				continue
			}
			score := components.Amount*weights.Amount +
				components.Date*weights.Date +
				components.Merchant*weights.Merchant +
				components.Reference*weights.Reference
			if score < s.reviewScore {
				continue
			}
			candidates = append(candidates, scoredCandidate{
				expense:     expense,
				transaction: txn,
				score:       score,
				components:  components,
			})
		}
	}

	// Greedy assignment: highest score first, ties broken by ascending
	// expense then transaction id so re-runs over identical data produce
	// identical sessions.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].expense.ExpenseID != candidates[j].expense.ExpenseID {
			return candidates[i].expense.ExpenseID < candidates[j].expense.ExpenseID
		}
		return candidates[i].transaction.TransactionID < candidates[j].transaction.TransactionID
	})

	now := time.Now()
	session := domain.ReconciliationSession{
		SessionID:   uuid.NewString(),
		UserID:      userID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Strategy:    strategy,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	var committed []domain.MatchCandidate
	var autoAcceptedIDs, pendingIDs []string
	matchedExpenses := make(map[string]bool)
	for _, c := range candidates {
		if claimedExpenses[c.expense.ExpenseID] || claimedTransactions[c.transaction.TransactionID] {
			continue
		}
		claimedExpenses[c.expense.ExpenseID] = true
		claimedTransactions[c.transaction.TransactionID] = true
		matchedExpenses[c.expense.ExpenseID] = true

		decision := domain.DecisionPending
		if autoAccept && c.score >= s.autoAcceptScore {
			decision = domain.DecisionAutoAccepted
		}
		match := domain.MatchCandidate{
			MatchID:         uuid.NewString(),
			SessionID:       session.SessionID,
			ExpenseID:       c.expense.ExpenseID,
			TransactionID:   c.transaction.TransactionID,
			Strategy:        strategy,
			Score:           c.score,
			ComponentScores: c.components,
			Decision:        decision,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
		committed = append(committed, match)
		if decision == domain.DecisionAutoAccepted {
			session.ExactCount++
			autoAcceptedIDs = append(autoAcceptedIDs, c.expense.ExpenseID)
		} else {
			session.ProbableCount++
			pendingIDs = append(pendingIDs, c.expense.ExpenseID)
		}
	}
	session.UnmatchedCount = eligibleExpenses - len(matchedExpenses)

	tx, err := s.matchRepo.Begin(ctx)
	if err != nil {
		s.LogError(ctx, err, "failed to begin reconciliation commit", "userID", userID)
		return nil, err
	}
	defer func() { _ = s.matchRepo.Rollback(ctx, tx) }()

	if err := s.matchRepo.SaveSessionInTx(ctx, tx, session); err != nil {
		s.LogError(ctx, err, "failed to save reconciliation session", "sessionID", session.SessionID)
		return nil, err
	}
	if len(committed) > 0 {
		if err := s.matchRepo.SaveMatchesInTx(ctx, tx, committed); err != nil {
			s.LogError(ctx, err, "failed to save match candidates", "sessionID", session.SessionID)
			return nil, err
		}
	}
	if len(autoAcceptedIDs) > 0 {
		if err := s.expenseRepo.UpdateMatchStatusInTx(ctx, tx, autoAcceptedIDs, domain.MatchStatusMatched, userID, now); err != nil {
			s.LogError(ctx, err, "failed to mark expenses matched", "sessionID", session.SessionID)
			return nil, err
		}
	}
	if len(pendingIDs) > 0 {
		if err := s.expenseRepo.UpdateMatchStatusInTx(ctx, tx, pendingIDs, domain.MatchStatusPending, userID, now); err != nil {
			s.LogError(ctx, err, "failed to mark expenses pending", "sessionID", session.SessionID)
			return nil, err
		}
	}
	if err := s.matchRepo.Commit(ctx, tx); err != nil {
		s.LogError(ctx, err, "failed to commit reconciliation run", "sessionID", session.SessionID)
		return nil, err
	}

	logger.Info("reconciliation run committed",
		"sessionID", session.SessionID,
		"autoAccepted", session.ExactCount,
		"pending", session.ProbableCount,
		"unmatched", session.UnmatchedCount)

	resp := &dto.ReconciliationRunResponse{Session: dto.ToSessionResponse(&session)}
	for i := range committed {
		mr := dto.ToMatchResponse(&committed[i])
		if committed[i].Decision == domain.DecisionAutoAccepted {
			resp.AutoAccepted = append(resp.AutoAccepted, mr)
		} else {
			resp.Pending = append(resp.Pending, mr)
		}
	}
	return resp, nil
}

// claimedIDs returns the expense and transaction ids already bound by an
// accepted match, so a run never proposes a second claim on either side.
func (s *reconciliationService) claimedIDs(ctx context.Context, userID string) (map[string]bool, map[string]bool, error) {
	accepted, err := s.matchRepo.ListAcceptedMatches(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "failed to list accepted matches", "userID", userID)
		return nil, nil, err
	}
	expenses := make(map[string]bool, len(accepted))
	transactions := make(map[string]bool, len(accepted))
	for _, m := range accepted {
		expenses[m.ExpenseID] = true
		transactions[m.TransactionID] = true
	}
	return expenses, transactions, nil
}

// scoreComponents computes the four per-signal scores for one candidate pair.
// Expense amounts are positive CHF values while transactions carry a sign, so
// amounts are compared on absolute value.
func (s *reconciliationService) scoreComponents(expense *domain.Expense, txn *domain.Transaction) domain.ComponentScores {
	return domain.ComponentScores{
		Amount:    s.amountScore(expense.AmountCHF, txn.Amount.Abs()),
		Date:      s.dateScore(expense.Date, txn.BookingDate),
		Merchant:  merchantScore(expense.MerchantText, txn.CounterpartyRaw),
		Reference: referenceScore(expense.Reference, txn.Reference),
	}
}

// amountScore grades the relative amount difference on a stepped ladder:
// exact 1.0, within the rounding tolerance 0.95, within 5% 0.8, within 10%
// 0.6, beyond that 0 (out of tolerance, candidate discarded).
func (s *reconciliationService) amountScore(expenseAmount, txnAmount decimal.Decimal) float64 {
	if expenseAmount.Equal(txnAmount) {
		return 1.0
	}
	if expenseAmount.IsZero() || txnAmount.IsZero() {
		return 0
	}
	diff, _ := expenseAmount.Sub(txnAmount).Abs().Div(expenseAmount.Abs()).Float64()
	switch {
	case diff <= s.amountTolerancePct:
		return 0.95
	case diff <= 0.05:
		return 0.8
	case diff <= 0.10:
		return 0.6
	default:
		return 0
	}
}

// dateWindowEdgePenalty is the score lost by a candidate booked at the far
// edge of the date window. Card settlements routinely post a few days after
// the purchase, so a small gap stays a strong signal.
const dateWindowEdgePenalty = 0.1

// dateScore decays linearly from 1.0 at zero offset to 0.9 at the window
// edge. Candidates beyond the window never reach scoring.
func (s *reconciliationService) dateScore(expenseDate, bookingDate time.Time) float64 {
	days := daysBetween(expenseDate, bookingDate)
	if days > s.dateWindowDays {
		return 0
	}
	return 1.0 - float64(days)/float64(s.dateWindowDays)*dateWindowEdgePenalty
}

// merchantScore compares the normalized texts. Bank counterparty strings
// usually carry the merchant name plus a branch or city suffix, so
// containment of one side in the other floors the score at 0.8 even when
// token overlap alone would grade lower.
func merchantScore(merchantText, counterparty string) float64 {
	a := domain.NormalizeMerchantText(merchantText)
	b := domain.NormalizeMerchantText(counterparty)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1.0
	}
	sim := textsim.Similarity(a, b)
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return math.Max(sim, 0.8)
	}
	return sim
}

func referenceScore(expenseRef, txnRef string) float64 {
	a := strings.TrimSpace(expenseRef)
	b := strings.TrimSpace(txnRef)
	if a == "" || b == "" {
		return 0
	}
	if strings.EqualFold(a, b) {
		return 1.0
	}
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if strings.Contains(la, lb) || strings.Contains(lb, la) {
		return 0.8
	}
	return 0
}

func withinDays(a, b time.Time, window int) bool {
	return daysBetween(a, b) <= window
}

// daysBetween returns the absolute calendar-day distance between two dates,
// ignoring the time of day.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	days := int(ad.Sub(bd).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

func (s *reconciliationService) userLock(userID string) *sync.Mutex {
	lock, _ := s.runLocks.LoadOrStore(userID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// ListPendingMatches retrieves the user's unresolved candidates.
func (s *reconciliationService) ListPendingMatches(ctx context.Context, userID string) ([]domain.MatchCandidate, error) {
	return s.matchRepo.ListPendingMatches(ctx, userID)
}

// ConfirmMatch accepts a pending candidate and marks its expense matched.
func (s *reconciliationService) ConfirmMatch(ctx context.Context, userID string, matchID string) (*domain.MatchCandidate, error) {
	return s.resolveMatch(ctx, userID, matchID, domain.DecisionAccepted, "")
}

// RejectMatch rejects a pending candidate. The pair is excluded from future
// runs and the expense returns to the unmatched pool.
func (s *reconciliationService) RejectMatch(ctx context.Context, userID string, matchID string, reason string) (*domain.MatchCandidate, error) {
	return s.resolveMatch(ctx, userID, matchID, domain.DecisionRejected, reason)
}

func (s *reconciliationService) resolveMatch(ctx context.Context, userID string, matchID string, decision domain.MatchDecision, reason string) (*domain.MatchCandidate, error) {
	match, err := s.matchRepo.FindMatchByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.CreatedBy != userID {
		return nil, apperrors.ErrNotFound
	}
	if match.Decision.Terminal() {
		return nil, fmt.Errorf("%w: match %s is already %s", apperrors.ErrTerminalState, matchID, match.Decision)
	}

	now := time.Now()
	if err := s.matchRepo.UpdateMatchDecision(ctx, matchID, decision, reason, userID, now); err != nil {
		return nil, err
	}

	status := domain.MatchStatusMatched
	if decision == domain.DecisionRejected {
		status = domain.MatchStatusUnmatched
	}
	if err := s.expenseRepo.UpdateMatchStatus(ctx, match.ExpenseID, status, userID, now); err != nil {
		s.LogError(ctx, err, "failed to update expense match status", "expenseID", match.ExpenseID)
		return nil, err
	}

	match.Decision = decision
	match.RejectReason = reason
	match.LastUpdatedAt = now
	match.LastUpdatedBy = userID
	return match, nil
}

// GetSession retrieves one of the user's sessions.
func (s *reconciliationService) GetSession(ctx context.Context, userID string, sessionID string) (*domain.ReconciliationSession, error) {
	session, err := s.matchRepo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	return session, nil
}

// ListSessions retrieves a paginated list of the user's sessions.
func (s *reconciliationService) ListSessions(ctx context.Context, userID string, limit int, offset int) ([]domain.ReconciliationSession, error) {
	return s.matchRepo.ListSessions(ctx, userID, limit, offset)
}

// SessionSummary returns a session together with all its candidates.
func (s *reconciliationService) SessionSummary(ctx context.Context, userID string, sessionID string) (*dto.SessionSummaryResponse, error) {
	session, err := s.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	matches, err := s.matchRepo.ListMatchesBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &dto.SessionSummaryResponse{
		Session: dto.ToSessionResponse(session),
		Matches: dto.ToListMatchResponse(matches),
	}, nil
}

// Overview aggregates match decisions across all of the user's sessions. The
// average score covers accepted and pending candidates; rejected pairs carry
// no score once resolved.
func (s *reconciliationService) Overview(ctx context.Context, userID string) (*dto.ReconciliationOverviewResponse, error) {
	accepted, err := s.matchRepo.ListAcceptedMatches(ctx, userID)
	if err != nil {
		return nil, err
	}
	pending, err := s.matchRepo.ListPendingMatches(ctx, userID)
	if err != nil {
		return nil, err
	}
	rejected, err := s.matchRepo.ListRejectedPairs(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.matchRepo.ListSessions(ctx, userID, 5, 0)
	if err != nil {
		return nil, err
	}

	var scoreSum float64
	for _, m := range accepted {
		scoreSum += m.Score
	}
	for _, m := range pending {
		scoreSum += m.Score
	}
	avg := 0.0
	if scored := len(accepted) + len(pending); scored > 0 {
		avg = scoreSum / float64(scored)
	}

	return &dto.ReconciliationOverviewResponse{
		AcceptedCount:  len(accepted),
		PendingCount:   len(pending),
		RejectedCount:  len(rejected),
		AverageScore:   avg,
		RecentSessions: dto.ToListSessionResponse(recent),
	}, nil
}
