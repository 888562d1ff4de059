package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/silvioiatech/umbra-accountant/internal/apperrors"
	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
	portsrepo "github.com/silvioiatech/umbra-accountant/internal/core/ports/repositories"
	"github.com/silvioiatech/umbra-accountant/internal/models"
)

type PgxExpenseRepository struct {
	pool *pgxpool.Pool
}

// newPgxExpenseRepository creates a new repository for expense data.
func newPgxExpenseRepository(pool *pgxpool.Pool) portsrepo.ExpenseRepositoryFacade {
	return &PgxExpenseRepository{pool: pool}
}

// Ensure PgxExpenseRepository implements portsrepo.ExpenseRepositoryFacade
var _ portsrepo.ExpenseRepositoryFacade = (*PgxExpenseRepository)(nil)

func toModelExpense(d domain.Expense) models.Expense {
	return models.Expense{
		ExpenseID:           d.ExpenseID,
		UserID:              d.UserID,
		MerchantText:        d.MerchantText,
		CanonicalMerchantID: d.CanonicalMerchantID,
		AmountCHF:           d.AmountCHF,
		Date:                d.Date,
		CategoryCode:        d.CategoryCode,
		CategoryConfidence:  d.CategoryConfidence,
		BusinessPercentage:  d.BusinessPercentage,
		Reference:           d.Reference,
		Notes:               d.Notes,
		MatchStatus:         string(d.MatchStatus),
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainExpense(m models.Expense) domain.Expense {
	return domain.Expense{
		ExpenseID:           m.ExpenseID,
		UserID:              m.UserID,
		MerchantText:        m.MerchantText,
		CanonicalMerchantID: m.CanonicalMerchantID,
		AmountCHF:           m.AmountCHF,
		Date:                m.Date,
		CategoryCode:        m.CategoryCode,
		CategoryConfidence:  m.CategoryConfidence,
		BusinessPercentage:  m.BusinessPercentage,
		Reference:           m.Reference,
		Notes:               m.Notes,
		MatchStatus:         domain.MatchStatus(m.MatchStatus),
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

// SaveExpense inserts a new expense.
func (r *PgxExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) error {
	m := toModelExpense(expense)

	query := `
		INSERT INTO expenses (expense_id, user_id, merchant_text, canonical_merchant_id, amount_chf, expense_date, category_code, category_confidence, business_percentage, reference, notes, match_status, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.pool.Exec(ctx, query,
		m.ExpenseID,
		m.UserID,
		m.MerchantText,
		nullableString(m.CanonicalMerchantID),
		m.AmountCHF,
		m.Date,
		m.CategoryCode,
		m.CategoryConfidence,
		m.BusinessPercentage,
		nullableString(m.Reference),
		nullableString(m.Notes),
		m.MatchStatus,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: expense with ID %s already exists", apperrors.ErrDuplicate, m.ExpenseID)
		}
		return fmt.Errorf("failed to save expense %s: %w", m.ExpenseID, err)
	}
	return nil
}

// UpdateExpenseCategory sets the category fields on an expense.
func (r *PgxExpenseRepository) UpdateExpenseCategory(ctx context.Context, expense domain.Expense) error {
	query := `
		UPDATE expenses
		SET category_code = $2, category_confidence = $3, business_percentage = $4, canonical_merchant_id = $5, last_updated_at = $6, last_updated_by = $7
		WHERE expense_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query,
		expense.ExpenseID,
		expense.CategoryCode,
		expense.CategoryConfidence,
		expense.BusinessPercentage,
		nullableString(expense.CanonicalMerchantID),
		expense.LastUpdatedAt,
		expense.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update category on expense %s: %w", expense.ExpenseID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateMatchStatus sets the match status on one expense.
func (r *PgxExpenseRepository) UpdateMatchStatus(ctx context.Context, expenseID string, status domain.MatchStatus, userID string, now time.Time) error {
	query := `
		UPDATE expenses
		SET match_status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE expense_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query, expenseID, string(status), now, userID)
	if err != nil {
		return fmt.Errorf("failed to update match status on expense %s: %w", expenseID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateMatchStatusInTx sets the match status on a set of expenses inside a
// reconciliation commit transaction.
func (r *PgxExpenseRepository) UpdateMatchStatusInTx(ctx context.Context, tx pgx.Tx, expenseIDs []string, status domain.MatchStatus, userID string, now time.Time) error {
	if len(expenseIDs) == 0 {
		return nil
	}
	query := `
		UPDATE expenses
		SET match_status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE expense_id = ANY($1);
	`
	if _, err := tx.Exec(ctx, query, expenseIDs, string(status), now, userID); err != nil {
		return fmt.Errorf("failed to update match status on %d expenses: %w", len(expenseIDs), err)
	}
	return nil
}

// FindExpenseByID retrieves an expense by its ID.
func (r *PgxExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	query := expenseSelect + ` WHERE expense_id = $1;`
	m, err := scanExpense(r.pool.QueryRow(ctx, query, expenseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find expense by ID %s: %w", expenseID, err)
	}
	d := toDomainExpense(m)
	return &d, nil
}

// ListExpenses retrieves a paginated list of a user's expenses.
func (r *PgxExpenseRepository) ListExpenses(ctx context.Context, userID string, limit int, offset int) ([]domain.Expense, error) {
	query := expenseSelect + `
		WHERE user_id = $1
		ORDER BY expense_date DESC, expense_id
		LIMIT $2 OFFSET $3;
	`
	return r.queryExpenses(ctx, query, userID, limit, offset)
}

// ListExpensesInPeriod retrieves a user's expenses dated inside [from, to].
func (r *PgxExpenseRepository) ListExpensesInPeriod(ctx context.Context, userID string, from time.Time, to time.Time) ([]domain.Expense, error) {
	query := expenseSelect + `
		WHERE user_id = $1 AND expense_date >= $2 AND expense_date <= $3
		ORDER BY expense_date, expense_id;
	`
	return r.queryExpenses(ctx, query, userID, from, to)
}

func (r *PgxExpenseRepository) queryExpenses(ctx context.Context, query string, args ...any) ([]domain.Expense, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []domain.Expense
	for rows.Next() {
		m, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		expenses = append(expenses, toDomainExpense(m))
	}
	return expenses, rows.Err()
}

const expenseSelect = `
	SELECT expense_id, user_id, merchant_text, canonical_merchant_id, amount_chf, expense_date, category_code, category_confidence, business_percentage, reference, notes, match_status, created_at, created_by, last_updated_at, last_updated_by
	FROM expenses`

func scanExpense(row pgx.Row) (models.Expense, error) {
	var m models.Expense
	var merchantID, reference, notes sql.NullString
	err := row.Scan(
		&m.ExpenseID,
		&m.UserID,
		&m.MerchantText,
		&merchantID,
		&m.AmountCHF,
		&m.Date,
		&m.CategoryCode,
		&m.CategoryConfidence,
		&m.BusinessPercentage,
		&reference,
		&notes,
		&m.MatchStatus,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	m.CanonicalMerchantID = merchantID.String
	m.Reference = reference.String
	m.Notes = notes.String
	return m, err
}
