package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
)

// StatementReader defines read operations for imported statement files
type StatementReader interface {
	// FindStatementByID retrieves a statement by its unique identifier.
	FindStatementByID(ctx context.Context, statementID string) (*domain.Statement, error)

	// ListStatements retrieves a paginated list of statements for a user.
	ListStatements(ctx context.Context, userID string, limit int, offset int) ([]domain.Statement, error)
}

// StatementWriter defines write operations for imported statement files
type StatementWriter interface {
	// SaveStatementInTx persists a new statement inside an import transaction.
	SaveStatementInTx(ctx context.Context, tx pgx.Tx, statement domain.Statement) error
}

// StatementRepositoryFacade combines all statement-related repository interfaces
type StatementRepositoryFacade interface {
	StatementReader
	StatementWriter
	TransactionManager
}

// TransactionReader defines read operations for bank-ledger transactions
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction by its unique identifier.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactionsInPeriod retrieves all of a user's transactions with a
	// booking date inside [from, to].
	ListTransactionsInPeriod(ctx context.Context, userID string, from time.Time, to time.Time) ([]domain.Transaction, error)

	// FindExistingContentHashes returns which of the given content hashes are
	// already stored for the user, for re-import deduplication.
	FindExistingContentHashes(ctx context.Context, userID string, hashes []string) (map[string]bool, error)
}

// TransactionWriter defines write operations for bank-ledger transactions
type TransactionWriter interface {
	// SaveTransactionsInTx bulk-inserts transactions inside an import
	// transaction. Rows violating the dedup constraint are skipped.
	SaveTransactionsInTx(ctx context.Context, tx pgx.Tx, transactions []domain.Transaction) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
