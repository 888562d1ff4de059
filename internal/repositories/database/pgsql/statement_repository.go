package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/silvioiatech/umbra-accountant/internal/apperrors"
	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
	portsrepo "github.com/silvioiatech/umbra-accountant/internal/core/ports/repositories"
	"github.com/silvioiatech/umbra-accountant/internal/models"
)

type PgxStatementRepository struct {
	BaseRepository
}

// newPgxStatementRepository creates a new repository for statement data.
func newPgxStatementRepository(pool *pgxpool.Pool) portsrepo.StatementRepositoryFacade {
	return &PgxStatementRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxStatementRepository implements portsrepo.StatementRepositoryFacade
var _ portsrepo.StatementRepositoryFacade = (*PgxStatementRepository)(nil)

func toModelStatement(d domain.Statement) models.Statement {
	return models.Statement{
		StatementID:      d.StatementID,
		UserID:           d.UserID,
		SourceFormat:     string(d.SourceFormat),
		AccountRef:       d.AccountRef,
		FileName:         d.FileName,
		ImportedAt:       d.ImportedAt,
		TransactionCount: d.TransactionCount,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainStatement(m models.Statement) domain.Statement {
	return domain.Statement{
		StatementID:      m.StatementID,
		UserID:           m.UserID,
		SourceFormat:     domain.StatementFormat(m.SourceFormat),
		AccountRef:       m.AccountRef,
		FileName:         m.FileName,
		ImportedAt:       m.ImportedAt,
		TransactionCount: m.TransactionCount,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

// SaveStatementInTx inserts a new statement inside an import transaction.
func (r *PgxStatementRepository) SaveStatementInTx(ctx context.Context, tx pgx.Tx, statement domain.Statement) error {
	m := toModelStatement(statement)

	query := `
		INSERT INTO statements (statement_id, user_id, source_format, account_ref, file_name, imported_at, transaction_count, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := tx.Exec(ctx, query,
		m.StatementID,
		m.UserID,
		m.SourceFormat,
		nullableString(m.AccountRef),
		m.FileName,
		m.ImportedAt,
		m.TransactionCount,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: statement with ID %s already exists", apperrors.ErrDuplicate, m.StatementID)
		}
		return fmt.Errorf("failed to save statement %s: %w", m.StatementID, err)
	}
	return nil
}

// FindStatementByID retrieves a statement by its ID.
func (r *PgxStatementRepository) FindStatementByID(ctx context.Context, statementID string) (*domain.Statement, error) {
	query := `
		SELECT statement_id, user_id, source_format, account_ref, file_name, imported_at, transaction_count, created_at, created_by, last_updated_at, last_updated_by
		FROM statements
		WHERE statement_id = $1;
	`
	m, err := scanStatement(r.Pool.QueryRow(ctx, query, statementID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find statement by ID %s: %w", statementID, err)
	}
	d := toDomainStatement(m)
	return &d, nil
}

// ListStatements retrieves a paginated list of a user's statements.
func (r *PgxStatementRepository) ListStatements(ctx context.Context, userID string, limit int, offset int) ([]domain.Statement, error) {
	query := `
		SELECT statement_id, user_id, source_format, account_ref, file_name, imported_at, transaction_count, created_at, created_by, last_updated_at, last_updated_by
		FROM statements
		WHERE user_id = $1
		ORDER BY imported_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list statements for user %s: %w", userID, err)
	}
	defer rows.Close()

	var statements []domain.Statement
	for rows.Next() {
		m, err := scanStatement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan statement row: %w", err)
		}
		statements = append(statements, toDomainStatement(m))
	}
	return statements, rows.Err()
}

func scanStatement(row pgx.Row) (models.Statement, error) {
	var m models.Statement
	var accountRef sql.NullString
	err := row.Scan(
		&m.StatementID,
		&m.UserID,
		&m.SourceFormat,
		&accountRef,
		&m.FileName,
		&m.ImportedAt,
		&m.TransactionCount,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	m.AccountRef = accountRef.String
	return m, err
}
