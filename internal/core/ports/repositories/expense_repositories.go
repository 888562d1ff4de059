package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
)

// ExpenseReader defines read operations for expense data
type ExpenseReader interface {
	// FindExpenseByID retrieves an expense by its unique identifier.
	FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error)

	// ListExpenses retrieves a paginated list of a user's expenses.
	ListExpenses(ctx context.Context, userID string, limit int, offset int) ([]domain.Expense, error)

	// ListExpensesInPeriod retrieves all of a user's expenses dated inside
	// [from, to].
	ListExpensesInPeriod(ctx context.Context, userID string, from time.Time, to time.Time) ([]domain.Expense, error)
}

// ExpenseWriter defines write operations for expense data
type ExpenseWriter interface {
	// SaveExpense persists a new expense.
	SaveExpense(ctx context.Context, expense domain.Expense) error

	// UpdateExpenseCategory sets the category fields on an expense.
	UpdateExpenseCategory(ctx context.Context, expense domain.Expense) error

	// UpdateMatchStatusInTx sets the match status on a set of expenses inside
	// a reconciliation commit transaction.
	UpdateMatchStatusInTx(ctx context.Context, tx pgx.Tx, expenseIDs []string, status domain.MatchStatus, userID string, now time.Time) error

	// UpdateMatchStatus sets the match status on one expense.
	UpdateMatchStatus(ctx context.Context, expenseID string, status domain.MatchStatus, userID string, now time.Time) error
}

// ExpenseRepositoryFacade combines all expense-related repository interfaces
type ExpenseRepositoryFacade interface {
	ExpenseReader
	ExpenseWriter
}
