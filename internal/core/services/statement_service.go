package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/silvioiatech/umbra-accountant/internal/apperrors"
	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
	portsrepo "github.com/silvioiatech/umbra-accountant/internal/core/ports/repositories"
	portssvc "github.com/silvioiatech/umbra-accountant/internal/core/ports/services"
	"github.com/silvioiatech/umbra-accountant/internal/dto"
	"github.com/silvioiatech/umbra-accountant/internal/ingest"
)

// statementService implements the StatementSvcFacade interface
type statementService struct {
	BaseService
	statementRepo   portsrepo.StatementRepositoryFacade
	transactionRepo portsrepo.TransactionRepositoryFacade
	registry        *ingest.Registry
}

// NewStatementService creates a new statement service.
func NewStatementService(statementRepo portsrepo.StatementRepositoryFacade, transactionRepo portsrepo.TransactionRepositoryFacade, registry *ingest.Registry) portssvc.StatementSvcFacade {
	return &statementService{
		statementRepo:   statementRepo,
		transactionRepo: transactionRepo,
		registry:        registry,
	}
}

// Ensure statementService implements the StatementSvcFacade interface
var _ portssvc.StatementSvcFacade = (*statementService)(nil)

// ImportStatement detects, parses, deduplicates and persists one statement
// file. The statement row and its transactions commit atomically; a re-import
// of the same file persists neither a new statement row nor new transactions.
func (s *statementService) ImportStatement(ctx context.Context, userID string, fileName string, raw []byte) (*dto.ImportStatementResponse, error) {
	parsed, err := s.registry.ParseStatement(raw, fileName)
	if err != nil {
		s.LogError(ctx, err, "Statement parsing failed", slog.String("file_name", fileName))
		return nil, err
	}

	now := time.Now()
	statementID := uuid.NewString()

	transactions := make([]domain.Transaction, 0, len(parsed.Transactions))
	hashes := make([]string, 0, len(parsed.Transactions))
	seen := make(map[string]bool, len(parsed.Transactions))
	duplicatesInFile := 0
	for _, rawTxn := range parsed.Transactions {
		txn := domain.Transaction{
			TransactionID:   uuid.NewString(),
			StatementID:     statementID,
			AccountRef:      parsed.AccountRef,
			BookingDate:     rawTxn.BookingDate,
			ValueDate:       rawTxn.ValueDate,
			Amount:          rawTxn.Amount,
			Currency:        rawTxn.Currency,
			CounterpartyRaw: rawTxn.Counterparty,
			Description:     rawTxn.Description,
			Reference:       rawTxn.Reference,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
		txn.ContentHash = txn.ComputeContentHash()
		if seen[txn.ContentHash] {
			duplicatesInFile++
			continue
		}
		seen[txn.ContentHash] = true
		transactions = append(transactions, txn)
		hashes = append(hashes, txn.ContentHash)
	}

	existing, err := s.transactionRepo.FindExistingContentHashes(ctx, userID, hashes)
	if err != nil {
		s.LogError(ctx, err, "Dedup hash lookup failed", slog.String("file_name", fileName))
		return nil, err
	}

	fresh := make([]domain.Transaction, 0, len(transactions))
	for _, txn := range transactions {
		if existing[txn.ContentHash] {
			continue
		}
		fresh = append(fresh, txn)
	}
	duplicateCount := duplicatesInFile + (len(transactions) - len(fresh))

	// Every row was imported before, so this is a re-upload of known content.
	// Persisting nothing keeps re-imports free of duplicate statement rows.
	if len(fresh) == 0 && duplicateCount > 0 {
		s.LogInfo(ctx, "Statement already imported, nothing persisted",
			slog.String("file_name", fileName),
			slog.String("format", string(parsed.Format)),
			slog.Int("duplicates", duplicateCount),
		)
		res := &dto.ImportStatementResponse{
			Format:         parsed.Format,
			AccountRef:     parsed.AccountRef,
			DuplicateCount: duplicateCount,
			SkippedRows:    parsed.SkippedRows,
		}
		for _, w := range parsed.Warnings {
			res.Warnings = append(res.Warnings, dto.ImportRowWarning{Row: w.Row, Reason: w.Reason, Raw: w.Raw})
		}
		return res, nil
	}

	statement := domain.Statement{
		StatementID:      statementID,
		UserID:           userID,
		SourceFormat:     parsed.Format,
		AccountRef:       parsed.AccountRef,
		FileName:         fileName,
		ImportedAt:       now,
		TransactionCount: len(fresh),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	tx, err := s.statementRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.statementRepo.Rollback(ctx, tx) //nolint:errcheck

	if err := s.statementRepo.SaveStatementInTx(ctx, tx, statement); err != nil {
		return nil, err
	}
	if err := s.transactionRepo.SaveTransactionsInTx(ctx, tx, fresh); err != nil {
		return nil, err
	}
	if err := s.statementRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Statement imported",
		slog.String("statement_id", statementID),
		slog.String("format", string(parsed.Format)),
		slog.Int("imported", len(fresh)),
		slog.Int("duplicates", duplicateCount),
		slog.Int("skipped_rows", parsed.SkippedRows),
	)

	res := &dto.ImportStatementResponse{
		StatementID:    statementID,
		Format:         parsed.Format,
		AccountRef:     parsed.AccountRef,
		ImportedCount:  len(fresh),
		DuplicateCount: duplicateCount,
		SkippedRows:    parsed.SkippedRows,
	}
	for _, w := range parsed.Warnings {
		res.Warnings = append(res.Warnings, dto.ImportRowWarning{Row: w.Row, Reason: w.Reason, Raw: w.Raw})
	}
	return res, nil
}

// GetStatementByID retrieves a statement, scoped to its owner.
func (s *statementService) GetStatementByID(ctx context.Context, userID string, statementID string) (*domain.Statement, error) {
	statement, err := s.statementRepo.FindStatementByID(ctx, statementID)
	if err != nil {
		return nil, err
	}
	if statement.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	return statement, nil
}

// ListStatements retrieves a paginated list of the user's statements.
func (s *statementService) ListStatements(ctx context.Context, userID string, limit int, offset int) ([]domain.Statement, error) {
	statements, err := s.statementRepo.ListStatements(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list statements: %w", err)
	}
	return statements, nil
}

// ListTransactions retrieves the user's transactions booked in [from, to].
func (s *statementService) ListTransactions(ctx context.Context, userID string, from time.Time, to time.Time) ([]domain.Transaction, error) {
	return s.transactionRepo.ListTransactionsInPeriod(ctx, userID, from, to)
}
