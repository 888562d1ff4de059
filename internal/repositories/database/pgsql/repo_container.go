package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/silvioiatech/umbra-accountant/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		StatementRepo:       newPgxStatementRepository(dbPool),
		TransactionRepo:     newPgxTransactionRepository(dbPool),
		ExpenseRepo:         newPgxExpenseRepository(dbPool),
		MerchantRepo:        newPgxMerchantRepository(dbPool),
		MatchRepo:           newPgxMatchRepository(dbPool),
		CategoryMappingRepo: newPgxCategoryMappingRepository(dbPool),
	}
}
