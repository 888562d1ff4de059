package services

import (
	portsrepo "github.com/silvioiatech/umbra-accountant/internal/core/ports/repositories"
	portssvc "github.com/silvioiatech/umbra-accountant/internal/core/ports/services"
	"github.com/silvioiatech/umbra-accountant/internal/ingest"
	"github.com/silvioiatech/umbra-accountant/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Statement ingestion with the standard format detector chain.
	registry := ingest.NewRegistry(cfg.MinDetectionConfidence)
	container.Statement = NewStatementService(repos.StatementRepo, repos.TransactionRepo, registry)

	// Merchant resolution and categorization feed expense creation, so they
	// come first.
	container.Merchant = NewMerchantService(
		repos.MerchantRepo,
		WithSimilarityThreshold(cfg.SimilarityThreshold),
		WithAliasLearnThreshold(cfg.AliasLearnThreshold),
	)
	container.Category = NewCategoryService(repos.CategoryMappingRepo)
	container.Expense = NewExpenseService(repos.ExpenseRepo, container.Merchant, container.Category)

	container.Reconciliation = NewReconciliationService(
		repos.MatchRepo,
		repos.ExpenseRepo,
		repos.TransactionRepo,
		WithDateWindowDays(cfg.DateWindowDays),
		WithAmountTolerance(cfg.AmountTolerancePct),
		WithScoreBands(cfg.AutoAcceptScore, cfg.ReviewScore),
	)
	container.Tax = NewTaxService(
		repos.ExpenseRepo,
		WithAssumedMarginalRate(cfg.AssumedMarginalRate),
	)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.StatementSvcFacade      = (*statementService)(nil)
	_ portssvc.MerchantSvcFacade       = (*merchantService)(nil)
	_ portssvc.CategorySvcFacade       = (*categoryService)(nil)
	_ portssvc.ExpenseSvcFacade        = (*expenseService)(nil)
	_ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)
	_ portssvc.TaxSvcFacade            = (*taxService)(nil)
)
