package services

import (
	"context"

	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
	"github.com/silvioiatech/umbra-accountant/internal/dto"
)

// ExpenseReaderSvc defines read operations for expense data
type ExpenseReaderSvc interface {
	// GetExpenseByID retrieves an expense by its unique identifier.
	GetExpenseByID(ctx context.Context, userID string, expenseID string) (*domain.Expense, error)

	// ListExpenses retrieves a paginated list of the user's expenses.
	ListExpenses(ctx context.Context, userID string, limit int, offset int) ([]domain.Expense, error)
}

// ExpenseWriterSvc defines write operations for expense data
type ExpenseWriterSvc interface {
	// CreateExpense persists a new expense, resolving its merchant and
	// assigning a deduction category when none is supplied.
	CreateExpense(ctx context.Context, userID string, req dto.CreateExpenseRequest) (*domain.Expense, error)

	// OverrideExpenseCategory replaces the category on an expense with a
	// user-chosen one, optionally learning the override for the merchant.
	OverrideExpenseCategory(ctx context.Context, userID string, expenseID string, req dto.UpdateCategoryRequest) (*domain.Expense, error)
}

// ExpenseSvcFacade combines all expense-related service interfaces
type ExpenseSvcFacade interface {
	ExpenseReaderSvc
	ExpenseWriterSvc
}
