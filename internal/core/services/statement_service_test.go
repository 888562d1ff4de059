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
	"github.com/silvioiatech/umbra-accountant/internal/ingest"
)

// MockStatementRepository is a mock type for the StatementRepositoryFacade interface
type MockStatementRepository struct {
	mock.Mock
}

func (m *MockStatementRepository) FindStatementByID(ctx context.Context, statementID string) (*domain.Statement, error) {
	args := m.Called(ctx, statementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Statement), args.Error(1)
}

func (m *MockStatementRepository) ListStatements(ctx context.Context, userID string, limit int, offset int) ([]domain.Statement, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Statement), args.Error(1)
}

func (m *MockStatementRepository) SaveStatementInTx(ctx context.Context, tx pgx.Tx, statement domain.Statement) error {
	args := m.Called(ctx, tx, statement)
	return args.Error(0)
}

func (m *MockStatementRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockStatementRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockStatementRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Test Suite Setup ---

type StatementServiceTestSuite struct {
	suite.Suite
	mockStatementRepo *MockStatementRepository
	mockTxnRepo       *MockTransactionRepository
	service           portssvc.StatementSvcFacade
	userID            string
}

func (suite *StatementServiceTestSuite) SetupTest() {
	suite.mockStatementRepo = new(MockStatementRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.service = services.NewStatementService(suite.mockStatementRepo, suite.mockTxnRepo, ingest.NewRegistry(0.5))
	suite.userID = "user-1"
}

func (suite *StatementServiceTestSuite) expectImportCommit() {
	suite.mockStatementRepo.On("Begin", mock.Anything).Return(nil, nil).Once()
	suite.mockStatementRepo.On("SaveStatementInTx", mock.Anything, mock.Anything, mock.AnythingOfType("domain.Statement")).Return(nil).Once()
	suite.mockStatementRepo.On("Commit", mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockStatementRepo.On("Rollback", mock.Anything, mock.Anything).Return(nil).Maybe()
}

const postfinanceSample = "Datum;Avisierungstext;Gutschrift;Belastung;Saldo\n" +
	"2024-04-02;COOP PRONTO BERN;;-23.50;1200.00\n" +
	"2024-04-05;Einzahlung;150.00;;1350.00\n"

// --- Test Cases ---

func (suite *StatementServiceTestSuite) TestImportStatement_Success() {
	ctx := context.Background()

	suite.mockTxnRepo.On("FindExistingContentHashes", mock.Anything, suite.userID, mock.AnythingOfType("[]string")).
		Return(map[string]bool{}, nil).Once()
	suite.expectImportCommit()

	var saved []domain.Transaction
	suite.mockTxnRepo.On("SaveTransactionsInTx", mock.Anything, mock.Anything, mock.AnythingOfType("[]domain.Transaction")).
		Run(func(args mock.Arguments) { saved = args.Get(2).([]domain.Transaction) }).
		Return(nil).Once()

	res, err := suite.service.ImportStatement(ctx, suite.userID, "postfinance.csv", []byte(postfinanceSample))

	suite.Require().NoError(err)
	suite.Equal(domain.FormatCSVPostFinance, res.Format)
	suite.Equal(2, res.ImportedCount)
	suite.Equal(0, res.DuplicateCount)
	suite.Equal(0, res.SkippedRows)
	suite.NotEmpty(res.StatementID)

	suite.Require().Len(saved, 2)
	suite.Equal(res.StatementID, saved[0].StatementID)
	suite.NotEmpty(saved[0].ContentHash)
	suite.Equal(suite.userID, saved[0].CreatedBy)

	suite.mockStatementRepo.AssertExpectations(suite.T())
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *StatementServiceTestSuite) TestImportStatement_ReimportIsIdempotent() {
	ctx := context.Background()

	// Every hash already exists: nothing new is written.
	existing := map[string]bool{
		domain.Transaction{
			BookingDate: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
			Amount:      decimal.RequireFromString("-23.50"),
		}.ComputeContentHash(): true,
		domain.Transaction{
			BookingDate: time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC),
			Amount:      decimal.RequireFromString("150.00"),
		}.ComputeContentHash(): true,
	}
	suite.mockTxnRepo.On("FindExistingContentHashes", mock.Anything, suite.userID, mock.AnythingOfType("[]string")).
		Return(existing, nil).Once()

	res, err := suite.service.ImportStatement(ctx, suite.userID, "postfinance.csv", []byte(postfinanceSample))

	suite.Require().NoError(err)
	suite.Equal(0, res.ImportedCount)
	suite.Equal(2, res.DuplicateCount)
	suite.Empty(res.StatementID)

	// The re-upload leaves no trace: no statement row, no transactions.
	suite.mockStatementRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
	suite.mockStatementRepo.AssertNotCalled(suite.T(), "SaveStatementInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransactionsInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *StatementServiceTestSuite) TestImportStatement_DuplicateRowsWithinFile() {
	ctx := context.Background()
	content := "Datum;Avisierungstext;Gutschrift;Belastung;Saldo\n" +
		"2024-04-02;COOP PRONTO BERN;;-23.50;1200.00\n" +
		"2024-04-02;COOP PRONTO BERN;;-23.50;1200.00\n"

	suite.mockTxnRepo.On("FindExistingContentHashes", mock.Anything, suite.userID, mock.AnythingOfType("[]string")).
		Return(map[string]bool{}, nil).Once()
	suite.expectImportCommit()
	suite.mockTxnRepo.On("SaveTransactionsInTx", mock.Anything, mock.Anything, mock.AnythingOfType("[]domain.Transaction")).Return(nil).Once()

	res, err := suite.service.ImportStatement(ctx, suite.userID, "postfinance.csv", []byte(content))

	suite.Require().NoError(err)
	suite.Equal(1, res.ImportedCount)
	suite.Equal(1, res.DuplicateCount)
}

func (suite *StatementServiceTestSuite) TestImportStatement_UnrecognizedFormatFails() {
	_, err := suite.service.ImportStatement(context.Background(), suite.userID, "notes.txt", []byte("just some prose without any structure"))
	suite.Require().ErrorIs(err, apperrors.ErrFormatUnrecognized)
	suite.mockStatementRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *StatementServiceTestSuite) TestGetStatementByID_OtherUsersStatementNotFound() {
	statement := &domain.Statement{StatementID: "statement-1", UserID: "user-2"}
	suite.mockStatementRepo.On("FindStatementByID", mock.Anything, "statement-1").Return(statement, nil).Once()

	_, err := suite.service.GetStatementByID(context.Background(), suite.userID, "statement-1")

	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
}

func TestStatementServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StatementServiceTestSuite))
}
