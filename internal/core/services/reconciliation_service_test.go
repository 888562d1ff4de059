package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/silvioiatech/umbra-accountant/internal/apperrors"
	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
	portssvc "github.com/silvioiatech/umbra-accountant/internal/core/ports/services"
	"github.com/silvioiatech/umbra-accountant/internal/core/services"
	"github.com/silvioiatech/umbra-accountant/internal/dto"
)

// MockMatchRepository is a mock type for the MatchRepositoryFacade interface
type MockMatchRepository struct {
	mock.Mock
}

func (m *MockMatchRepository) FindMatchByID(ctx context.Context, matchID string) (*domain.MatchCandidate, error) {
	args := m.Called(ctx, matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MatchCandidate), args.Error(1)
}

func (m *MockMatchRepository) ListMatchesBySession(ctx context.Context, sessionID string) ([]domain.MatchCandidate, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MatchCandidate), args.Error(1)
}

func (m *MockMatchRepository) ListPendingMatches(ctx context.Context, userID string) ([]domain.MatchCandidate, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MatchCandidate), args.Error(1)
}

func (m *MockMatchRepository) ListRejectedPairs(ctx context.Context, userID string) (map[[2]string]bool, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[[2]string]bool), args.Error(1)
}

func (m *MockMatchRepository) ListAcceptedMatches(ctx context.Context, userID string) ([]domain.MatchCandidate, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MatchCandidate), args.Error(1)
}

func (m *MockMatchRepository) SaveMatchesInTx(ctx context.Context, tx pgx.Tx, matches []domain.MatchCandidate) error {
	args := m.Called(ctx, tx, matches)
	return args.Error(0)
}

func (m *MockMatchRepository) UpdateMatchDecision(ctx context.Context, matchID string, decision domain.MatchDecision, reason string, userID string, now time.Time) error {
	args := m.Called(ctx, matchID, decision, reason, userID, now)
	return args.Error(0)
}

func (m *MockMatchRepository) FindSessionByID(ctx context.Context, sessionID string) (*domain.ReconciliationSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconciliationSession), args.Error(1)
}

func (m *MockMatchRepository) ListSessions(ctx context.Context, userID string, limit int, offset int) ([]domain.ReconciliationSession, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReconciliationSession), args.Error(1)
}

func (m *MockMatchRepository) SaveSessionInTx(ctx context.Context, tx pgx.Tx, session domain.ReconciliationSession) error {
	args := m.Called(ctx, tx, session)
	return args.Error(0)
}

func (m *MockMatchRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockMatchRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockMatchRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// MockExpenseRepository is a mock type for the ExpenseRepositoryFacade interface
type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	args := m.Called(ctx, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockExpenseRepository) ListExpenses(ctx context.Context, userID string, limit int, offset int) ([]domain.Expense, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Expense), args.Error(1)
}

func (m *MockExpenseRepository) ListExpensesInPeriod(ctx context.Context, userID string, from time.Time, to time.Time) ([]domain.Expense, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Expense), args.Error(1)
}

func (m *MockExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) UpdateExpenseCategory(ctx context.Context, expense domain.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) UpdateMatchStatusInTx(ctx context.Context, tx pgx.Tx, expenseIDs []string, status domain.MatchStatus, userID string, now time.Time) error {
	args := m.Called(ctx, tx, expenseIDs, status, userID, now)
	return args.Error(0)
}

func (m *MockExpenseRepository) UpdateMatchStatus(ctx context.Context, expenseID string, status domain.MatchStatus, userID string, now time.Time) error {
	args := m.Called(ctx, expenseID, status, userID, now)
	return args.Error(0)
}

// MockTransactionRepository is a mock type for the TransactionRepositoryFacade interface
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactionsInPeriod(ctx context.Context, userID string, from time.Time, to time.Time) ([]domain.Transaction, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindExistingContentHashes(ctx context.Context, userID string, hashes []string) (map[string]bool, error) {
	args := m.Called(ctx, userID, hashes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

func (m *MockTransactionRepository) SaveTransactionsInTx(ctx context.Context, tx pgx.Tx, transactions []domain.Transaction) error {
	args := m.Called(ctx, tx, transactions)
	return args.Error(0)
}

// --- Test Suite Setup ---

type ReconciliationServiceTestSuite struct {
	suite.Suite
	mockMatchRepo   *MockMatchRepository
	mockExpenseRepo *MockExpenseRepository
	mockTxnRepo     *MockTransactionRepository
	service         portssvc.ReconciliationSvcFacade
	userID          string
}

func (suite *ReconciliationServiceTestSuite) SetupTest() {
	suite.mockMatchRepo = new(MockMatchRepository)
	suite.mockExpenseRepo = new(MockExpenseRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.service = services.NewReconciliationService(suite.mockMatchRepo, suite.mockExpenseRepo, suite.mockTxnRepo)
	suite.userID = "user-1"
}

func (suite *ReconciliationServiceTestSuite) expectEmptyHistory() {
	suite.mockMatchRepo.On("ListRejectedPairs", mock.Anything, suite.userID).Return(map[[2]string]bool{}, nil).Once()
	suite.mockMatchRepo.On("ListAcceptedMatches", mock.Anything, suite.userID).Return([]domain.MatchCandidate{}, nil).Once()
}

func (suite *ReconciliationServiceTestSuite) expectCommit() {
	suite.mockMatchRepo.On("Begin", mock.Anything).Return(nil, nil).Once()
	suite.mockMatchRepo.On("SaveSessionInTx", mock.Anything, mock.Anything, mock.AnythingOfType("domain.ReconciliationSession")).Return(nil).Once()
	suite.mockMatchRepo.On("Commit", mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockMatchRepo.On("Rollback", mock.Anything, mock.Anything).Return(nil).Maybe()
}

func makeExpense(id, userID string, amount string, date time.Time, merchant, reference string) domain.Expense {
	return domain.Expense{
		ExpenseID:    id,
		UserID:       userID,
		MerchantText: merchant,
		AmountCHF:    decimal.RequireFromString(amount),
		Date:         date,
		Reference:    reference,
		MatchStatus:  domain.MatchStatusUnmatched,
	}
}

func makeTransaction(id, amount string, date time.Time, counterparty, reference string) domain.Transaction {
	return domain.Transaction{
		TransactionID:   id,
		BookingDate:     date,
		Amount:          decimal.RequireFromString(amount),
		Currency:        "CHF",
		CounterpartyRaw: counterparty,
		Reference:       reference,
	}
}

// --- Test Cases ---

func (suite *ReconciliationServiceTestSuite) TestRunReconciliation_AutoAcceptsExactMatch() {
	ctx := context.Background()
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	expense := makeExpense("expense-1", suite.userID, "42.50", day, "Migros Zürich", "RF18 5390 0754 7034")
	txn := makeTransaction("txn-1", "-42.50", day, "MIGROS ZÜRICH", "RF18 5390 0754 7034")

	suite.mockExpenseRepo.On("ListExpensesInPeriod", mock.Anything, suite.userID, mock.Anything, mock.Anything).
		Return([]domain.Expense{expense}, nil).Once()
	suite.mockTxnRepo.On("ListTransactionsInPeriod", mock.Anything, suite.userID, mock.Anything, mock.Anything).
		Return([]domain.Transaction{txn}, nil).Once()
	suite.expectEmptyHistory()
	suite.expectCommit()

	var saved []domain.MatchCandidate
	suite.mockMatchRepo.On("SaveMatchesInTx", mock.Anything, mock.Anything, mock.AnythingOfType("[]domain.MatchCandidate")).
		Run(func(args mock.Arguments) { saved = args.Get(2).([]domain.MatchCandidate) }).
		Return(nil).Once()
	suite.mockExpenseRepo.On("UpdateMatchStatusInTx", mock.Anything, mock.Anything, []string{"expense-1"}, domain.MatchStatusMatched, suite.userID, mock.Anything).
		Return(nil).Once()

	resp, err := suite.service.RunReconciliation(ctx, suite.userID, dto.ReconcileRequest{
		PeriodStart: "2024-05-01",
		PeriodEnd:   "2024-05-31",
	})

	suite.Require().NoError(err)
	suite.Require().Len(resp.AutoAccepted, 1)
	suite.Empty(resp.Pending)
	suite.Equal(1, resp.Session.ExactCount)
	suite.Equal(0, resp.Session.UnmatchedCount)

	suite.Require().Len(saved, 1)
	suite.Equal("expense-1", saved[0].ExpenseID)
	suite.Equal("txn-1", saved[0].TransactionID)
	suite.Equal(domain.DecisionAutoAccepted, saved[0].Decision)
	suite.InDelta(1.0, saved[0].Score, 0.001)
	suite.InDelta(1.0, saved[0].ComponentScores.Amount, 0.001)
	suite.InDelta(1.0, saved[0].ComponentScores.Reference, 0.001)

	suite.mockMatchRepo.AssertExpectations(suite.T())
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestRunReconciliation_AutoAcceptsNextDaySettlement() {
	ctx := context.Background()

	// Card purchases commonly post one day later under a counterparty string
	// that carries a branch suffix. Exact amount, one-day offset and merchant
	// containment must still clear the auto-accept band:
	// 0.5*1.0 + 0.25*0.9667 + 0.15*0.8 = 0.8617.
	expense := makeExpense("expense-1", suite.userID, "45.80",
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "Migros", "")
	txn := makeTransaction("txn-1", "-45.80",
		time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC), "MIGROS ZH", "")

	suite.mockExpenseRepo.On("ListExpensesInPeriod", mock.Anything, suite.userID, mock.Anything, mock.Anything).
		Return([]domain.Expense{expense}, nil).Once()
	suite.mockTxnRepo.On("ListTransactionsInPeriod", mock.Anything, suite.userID, mock.Anything, mock.Anything).
		Return([]domain.Transaction{txn}, nil).Once()
	suite.expectEmptyHistory()
	suite.expectCommit()

	var saved []domain.MatchCandidate
	suite.mockMatchRepo.On("SaveMatchesInTx", mock.Anything, mock.Anything, mock.AnythingOfType("[]domain.MatchCandidate")).
		Run(func(args mock.Arguments) { saved = args.Get(2).([]domain.MatchCandidate) }).
		Return(nil).Once()
	suite.mockExpenseRepo.On("UpdateMatchStatusInTx", mock.Anything, mock.Anything, []string{"expense-1"}, domain.MatchStatusMatched, suite.userID, mock.Anything).
		Return(nil).Once()

	resp, err := suite.service.RunReconciliation(ctx, suite.userID, dto.ReconcileRequest{
		PeriodStart: "2024-01-01",
		PeriodEnd:   "2024-01-31",
	})

	suite.Require().NoError(err)
	suite.Require().Len(resp.AutoAccepted, 1)
	suite.Empty(resp.Pending)

	suite.Require().Len(saved, 1)
	suite.Equal(domain.DecisionAutoAccepted, saved[0].Decision)
	suite.InDelta(0.8617, saved[0].Score, 0.001)
	suite.InDelta(0.9667, saved[0].ComponentScores.Date, 0.001)
	suite.InDelta(0.8, saved[0].ComponentScores.Merchant, 0.001)

	suite.mockMatchRepo.AssertExpectations(suite.T())
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestRunReconciliation_MidScoreLandsInPendingBand() {
	ctx := context.Background()
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	// 3% amount difference and a two-day offset with the lenient strategy:
	// 0.7*0.8 + 0.3*0.9333 = 0.84, inside [0.5, 0.85).
	expense := makeExpense("expense-1", suite.userID, "100.00", day, "Garage Müller", "")
	txn := makeTransaction("txn-1", "-103.00", day.AddDate(0, 0, 2), "TWINT PAYMENT", "")

	suite.mockExpenseRepo.On("ListExpensesInPeriod", mock.Anything, suite.userID, mock.Anything, mock.Anything).
		Return([]domain.Expense{expense}, nil).Once()
	suite.mockTxnRepo.On("ListTransactionsInPeriod", mock.Anything, suite.userID, mock.Anything, mock.Anything).
		Return([]domain.Transaction{txn}, nil).Once()
	suite.expectEmptyHistory()
	suite.expectCommit()

	var saved []domain.MatchCandidate
	suite.mockMatchRepo.On("SaveMatchesInTx", mock.Anything, mock.Anything, mock.AnythingOfType("[]domain.MatchCandidate")).
		Run(func(args mock.Arguments) { saved = args.Get(2).([]domain.MatchCandidate) }).
		Return(nil).Once()
	suite.mockExpenseRepo.On("UpdateMatchStatusInTx", mock.Anything, mock.Anything, []string{"expense-1"}, domain.MatchStatusPending, suite.userID, mock.Anything).
		Return(nil).Once()

	resp, err := suite.service.RunReconciliation(ctx, suite.userID, dto.ReconcileRequest{
		PeriodStart: "2024-05-01",
		PeriodEnd:   "2024-05-31",
		Strategy:    domain.StrategyAmountDateOnly,
	})

	suite.Require().NoError(err)
	suite.Empty(resp.AutoAccepted)
	suite.Require().Len(resp.Pending, 1)
	suite.Equal(1, resp.Session.ProbableCount)

	suite.Require().Len(saved, 1)
	suite.Equal(domain.DecisionPending, saved[0].Decision)
	suite.InDelta(0.84, saved[0].Score, 0.001)

	suite.mockMatchRepo.AssertExpectations(suite.T())
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestRunReconciliation_AutoAcceptDisabledKeepsPending() {
	ctx := context.Background()
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	expense := makeExpense("expense-1", suite.userID, "42.50", day, "Migros Zürich", "REF-1")
	txn := makeTransaction("txn-1", "-42.50", day, "MIGROS ZÜRICH", "REF-1")

	suite.mockExpenseRepo.On("ListExpensesInPeriod", mock.Anything, suite.userID, mock.Anything, mock.Anything).
		Return([]domain.Expense{expense}, nil).Once()
	suite.mockTxnRepo.On("ListTransactionsInPeriod", mock.Anything, suite.userID, mock.Anything, mock.Anything).
		Return([]domain.Transaction{txn}, nil).Once()
	suite.expectEmptyHistory()
	suite.expectCommit()
	suite.mockMatchRepo.On("SaveMatchesInTx", mock.Anything, mock.Anything, mock.AnythingOfType("[]domain.MatchCandidate")).Return(nil).Once()
	suite.mockExpenseRepo.On("UpdateMatchStatusInTx", mock.Anything, mock.Anything, []string{"expense-1"}, domain.MatchStatusPending, suite.userID, mock.Anything).
		Return(nil).Once()

	off := false
	resp, err := suite.service.RunReconciliation(ctx, suite.userID, dto.ReconcileRequest{
		PeriodStart: "2024-05-01",
		PeriodEnd:   "2024-05-31",
		AutoAccept:  &off,
	})

	suite.Require().NoError(err)
	suite.Empty(resp.AutoAccepted)
	suite.Len(resp.Pending, 1)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestRunReconciliation_GreedyTieBreaksOnExpenseID() {
	ctx := context.Background()
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	// Two identical expenses compete for one transaction; the lower expense
	// id wins the tie and the other stays unmatched.
	expenseA := makeExpense("expense-a", suite.userID, "80.00", day, "SBB CFF FFS", "")
	expenseB := makeExpense("expense-b", suite.userID, "80.00", day, "SBB CFF FFS", "")
	txn := makeTransaction("txn-1", "-80.00", day, "SBB CFF FFS", "")

	suite.mockExpenseRepo.On("ListExpensesInPeriod", mock.Anything, suite.userID, mock.Anything, mock.Anything).
		Return([]domain.Expense{expenseB, expenseA}, nil).Once()
	suite.mockTxnRepo.On("ListTransactionsInPeriod", mock.Anything, suite.userID, mock.Anything, mock.Anything).
		Return([]domain.Transaction{txn}, nil).Once()
	suite.expectEmptyHistory()
	suite.expectCommit()

	var saved []domain.MatchCandidate
	suite.mockMatchRepo.On("SaveMatchesInTx", mock.Anything, mock.Anything, mock.AnythingOfType("[]domain.MatchCandidate")).
		Run(func(args mock.Arguments) { saved = args.Get(2).([]domain.MatchCandidate) }).
		Return(nil).Once()
	suite.mockExpenseRepo.On("UpdateMatchStatusInTx", mock.Anything, mock.Anything, []string{"expense-a"}, domain.MatchStatusMatched, suite.userID, mock.Anything).
		Return(nil).Once()

	resp, err := suite.service.RunReconciliation(ctx, suite.userID, dto.ReconcileRequest{
		PeriodStart: "2024-05-01",
		PeriodEnd:   "2024-05-31",
	})

	suite.Require().NoError(err)
	suite.Require().Len(saved, 1)
	suite.Equal("expense-a", saved[0].ExpenseID)
	suite.Equal(1, resp.Session.UnmatchedCount)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestRunReconciliation_SkipsRejectedPairs() {
	ctx := context.Background()
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	expense := makeExpense("expense-1", suite.userID, "42.50", day, "Migros", "")
	txn := makeTransaction("txn-1", "-42.50", day, "MIGROS", "")

	suite.mockExpenseRepo.On("ListExpensesInPeriod", mock.Anything, suite.userID, mock.Anything, mock.Anything).
		Return([]domain.Expense{expense}, nil).Once()
	suite.mockTxnRepo.On("ListTransactionsInPeriod", mock.Anything, suite.userID, mock.Anything, mock.Anything).
		Return([]domain.Transaction{txn}, nil).Once()
	suite.mockMatchRepo.On("ListRejectedPairs", mock.Anything, suite.userID).
		Return(map[[2]string]bool{{"expense-1", "txn-1"}: true}, nil).Once()
	suite.mockMatchRepo.On("ListAcceptedMatches", mock.Anything, suite.userID).
		Return([]domain.MatchCandidate{}, nil).Once()
	suite.expectCommit()

	resp, err := suite.service.RunReconciliation(ctx, suite.userID, dto.ReconcileRequest{
		PeriodStart: "2024-05-01",
		PeriodEnd:   "2024-05-31",
	})

	suite.Require().NoError(err)
	suite.Empty(resp.AutoAccepted)
	suite.Empty(resp.Pending)
	suite.Equal(1, resp.Session.UnmatchedCount)
	suite.mockMatchRepo.AssertNotCalled(suite.T(), "SaveMatchesInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockMatchRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestRunReconciliation_SkipsAlreadyClaimedTransaction() {
	ctx := context.Background()
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	expense := makeExpense("expense-1", suite.userID, "42.50", day, "Migros", "")
	txn := makeTransaction("txn-1", "-42.50", day, "MIGROS", "")

	suite.mockExpenseRepo.On("ListExpensesInPeriod", mock.Anything, suite.userID, mock.Anything, mock.Anything).
		Return([]domain.Expense{expense}, nil).Once()
	suite.mockTxnRepo.On("ListTransactionsInPeriod", mock.Anything, suite.userID, mock.Anything, mock.Anything).
		Return([]domain.Transaction{txn}, nil).Once()
	suite.mockMatchRepo.On("ListRejectedPairs", mock.Anything, suite.userID).
		Return(map[[2]string]bool{}, nil).Once()
	suite.mockMatchRepo.On("ListAcceptedMatches", mock.Anything, suite.userID).
		Return([]domain.MatchCandidate{{ExpenseID: "expense-other", TransactionID: "txn-1", Decision: domain.DecisionAccepted}}, nil).Once()
	suite.expectCommit()

	resp, err := suite.service.RunReconciliation(ctx, suite.userID, dto.ReconcileRequest{
		PeriodStart: "2024-05-01",
		PeriodEnd:   "2024-05-31",
	})

	suite.Require().NoError(err)
	suite.Empty(resp.AutoAccepted)
	suite.Empty(resp.Pending)
	suite.mockMatchRepo.AssertNotCalled(suite.T(), "SaveMatchesInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconciliationServiceTestSuite) TestRunReconciliation_DiscardsOutOfToleranceAmount() {
	ctx := context.Background()
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	expense := makeExpense("expense-1", suite.userID, "100.00", day, "Migros", "")
	txn := makeTransaction("txn-1", "-125.00", day, "MIGROS", "")

	suite.mockExpenseRepo.On("ListExpensesInPeriod", mock.Anything, suite.userID, mock.Anything, mock.Anything).
		Return([]domain.Expense{expense}, nil).Once()
	suite.mockTxnRepo.On("ListTransactionsInPeriod", mock.Anything, suite.userID, mock.Anything, mock.Anything).
		Return([]domain.Transaction{txn}, nil).Once()
	suite.expectEmptyHistory()
	suite.expectCommit()

	resp, err := suite.service.RunReconciliation(ctx, suite.userID, dto.ReconcileRequest{
		PeriodStart: "2024-05-01",
		PeriodEnd:   "2024-05-31",
	})

	suite.Require().NoError(err)
	suite.Empty(resp.AutoAccepted)
	suite.Empty(resp.Pending)
	suite.Equal(1, resp.Session.UnmatchedCount)
}

func (suite *ReconciliationServiceTestSuite) TestRunReconciliation_RejectsInvertedPeriod() {
	_, err := suite.service.RunReconciliation(context.Background(), suite.userID, dto.ReconcileRequest{
		PeriodStart: "2024-05-31",
		PeriodEnd:   "2024-05-01",
	})
	suite.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ReconciliationServiceTestSuite) TestConfirmMatch_Success() {
	ctx := context.Background()
	pending := &domain.MatchCandidate{
		MatchID:       "match-1",
		ExpenseID:     "expense-1",
		TransactionID: "txn-1",
		Decision:      domain.DecisionPending,
		AuditFields:   domain.AuditFields{CreatedBy: suite.userID},
	}

	suite.mockMatchRepo.On("FindMatchByID", mock.Anything, "match-1").Return(pending, nil).Once()
	suite.mockMatchRepo.On("UpdateMatchDecision", mock.Anything, "match-1", domain.DecisionAccepted, "", suite.userID, mock.Anything).
		Return(nil).Once()
	suite.mockExpenseRepo.On("UpdateMatchStatus", mock.Anything, "expense-1", domain.MatchStatusMatched, suite.userID, mock.Anything).
		Return(nil).Once()

	match, err := suite.service.ConfirmMatch(ctx, suite.userID, "match-1")

	suite.Require().NoError(err)
	suite.Equal(domain.DecisionAccepted, match.Decision)
	suite.mockMatchRepo.AssertExpectations(suite.T())
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestConfirmMatch_TerminalStateFails() {
	resolved := &domain.MatchCandidate{
		MatchID:     "match-1",
		ExpenseID:   "expense-1",
		Decision:    domain.DecisionAutoAccepted,
		AuditFields: domain.AuditFields{CreatedBy: suite.userID},
	}
	suite.mockMatchRepo.On("FindMatchByID", mock.Anything, "match-1").Return(resolved, nil).Once()

	_, err := suite.service.ConfirmMatch(context.Background(), suite.userID, "match-1")

	suite.Require().ErrorIs(err, apperrors.ErrTerminalState)
	suite.mockMatchRepo.AssertNotCalled(suite.T(), "UpdateMatchDecision", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconciliationServiceTestSuite) TestConfirmMatch_OtherUsersMatchNotFound() {
	other := &domain.MatchCandidate{
		MatchID:     "match-1",
		Decision:    domain.DecisionPending,
		AuditFields: domain.AuditFields{CreatedBy: "user-2"},
	}
	suite.mockMatchRepo.On("FindMatchByID", mock.Anything, "match-1").Return(other, nil).Once()

	_, err := suite.service.ConfirmMatch(context.Background(), suite.userID, "match-1")

	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ReconciliationServiceTestSuite) TestRejectMatch_ReleasesExpense() {
	ctx := context.Background()
	pending := &domain.MatchCandidate{
		MatchID:       "match-1",
		ExpenseID:     "expense-1",
		TransactionID: "txn-1",
		Decision:      domain.DecisionPending,
		AuditFields:   domain.AuditFields{CreatedBy: suite.userID},
	}

	suite.mockMatchRepo.On("FindMatchByID", mock.Anything, "match-1").Return(pending, nil).Once()
	suite.mockMatchRepo.On("UpdateMatchDecision", mock.Anything, "match-1", domain.DecisionRejected, "wrong merchant", suite.userID, mock.Anything).
		Return(nil).Once()
	suite.mockExpenseRepo.On("UpdateMatchStatus", mock.Anything, "expense-1", domain.MatchStatusUnmatched, suite.userID, mock.Anything).
		Return(nil).Once()

	match, err := suite.service.RejectMatch(ctx, suite.userID, "match-1", "wrong merchant")

	suite.Require().NoError(err)
	suite.Equal(domain.DecisionRejected, match.Decision)
	suite.Equal("wrong merchant", match.RejectReason)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestGetSession_OtherUsersSessionNotFound() {
	session := &domain.ReconciliationSession{SessionID: "session-1", UserID: "user-2"}
	suite.mockMatchRepo.On("FindSessionByID", mock.Anything, "session-1").Return(session, nil).Once()

	_, err := suite.service.GetSession(context.Background(), suite.userID, "session-1")

	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ReconciliationServiceTestSuite) TestOverview_AggregatesDecisions() {
	accepted := []domain.MatchCandidate{
		{MatchID: "match-1", Score: 1.0, Decision: domain.DecisionAutoAccepted},
		{MatchID: "match-2", Score: 0.9, Decision: domain.DecisionAccepted},
	}
	pending := []domain.MatchCandidate{
		{MatchID: "match-3", Score: 0.6, Decision: domain.DecisionPending},
	}
	rejected := map[[2]string]bool{{"expense-1", "txn-1"}: true}
	sessions := []domain.ReconciliationSession{{SessionID: "session-1", UserID: suite.userID}}

	suite.mockMatchRepo.On("ListAcceptedMatches", mock.Anything, suite.userID).Return(accepted, nil).Once()
	suite.mockMatchRepo.On("ListPendingMatches", mock.Anything, suite.userID).Return(pending, nil).Once()
	suite.mockMatchRepo.On("ListRejectedPairs", mock.Anything, suite.userID).Return(rejected, nil).Once()
	suite.mockMatchRepo.On("ListSessions", mock.Anything, suite.userID, 5, 0).Return(sessions, nil).Once()

	overview, err := suite.service.Overview(context.Background(), suite.userID)

	suite.Require().NoError(err)
	suite.Equal(2, overview.AcceptedCount)
	suite.Equal(1, overview.PendingCount)
	suite.Equal(1, overview.RejectedCount)
	suite.InDelta(0.8333, overview.AverageScore, 0.001)
	suite.Len(overview.RecentSessions, 1)
}

func (suite *ReconciliationServiceTestSuite) TestOverview_EmptyHistoryHasZeroAverage() {
	suite.mockMatchRepo.On("ListAcceptedMatches", mock.Anything, suite.userID).Return([]domain.MatchCandidate{}, nil).Once()
	suite.mockMatchRepo.On("ListPendingMatches", mock.Anything, suite.userID).Return([]domain.MatchCandidate{}, nil).Once()
	suite.mockMatchRepo.On("ListRejectedPairs", mock.Anything, suite.userID).Return(map[[2]string]bool{}, nil).Once()
	suite.mockMatchRepo.On("ListSessions", mock.Anything, suite.userID, 5, 0).Return([]domain.ReconciliationSession{}, nil).Once()

	overview, err := suite.service.Overview(context.Background(), suite.userID)

	suite.Require().NoError(err)
	suite.Zero(overview.AcceptedCount)
	suite.Zero(overview.AverageScore)
	suite.Empty(overview.RecentSessions)
}

func TestReconciliationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}
