package services

import (
	"context"
	"time"

	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
	"github.com/silvioiatech/umbra-accountant/internal/dto"
)

// StatementImporterSvc defines the statement import pipeline
type StatementImporterSvc interface {
	// ImportStatement detects the format of raw statement bytes, parses them,
	// deduplicates against stored transactions and persists the remainder.
	ImportStatement(ctx context.Context, userID string, fileName string, raw []byte) (*dto.ImportStatementResponse, error)
}

// StatementReaderSvc defines read operations for statements and transactions
type StatementReaderSvc interface {
	// GetStatementByID retrieves a statement by its unique identifier.
	GetStatementByID(ctx context.Context, userID string, statementID string) (*domain.Statement, error)

	// ListStatements retrieves a paginated list of the user's statements.
	ListStatements(ctx context.Context, userID string, limit int, offset int) ([]domain.Statement, error)

	// ListTransactions retrieves the user's transactions booked in [from, to].
	ListTransactions(ctx context.Context, userID string, from time.Time, to time.Time) ([]domain.Transaction, error)
}

// StatementSvcFacade combines all statement-related service interfaces
type StatementSvcFacade interface {
	StatementImporterSvc
	StatementReaderSvc
}
