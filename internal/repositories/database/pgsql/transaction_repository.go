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

type PgxTransactionRepository struct {
	pool *pgxpool.Pool
}

// newPgxTransactionRepository creates a new repository for bank transaction data.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{pool: pool}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryFacade
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func toModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:   d.TransactionID,
		StatementID:     d.StatementID,
		AccountRef:      d.AccountRef,
		BookingDate:     d.BookingDate,
		ValueDate:       d.ValueDate,
		Amount:          d.Amount,
		Currency:        d.Currency,
		CounterpartyRaw: d.CounterpartyRaw,
		Description:     d.Description,
		Reference:       d.Reference,
		ContentHash:     d.ContentHash,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:   m.TransactionID,
		StatementID:     m.StatementID,
		AccountRef:      m.AccountRef,
		BookingDate:     m.BookingDate,
		ValueDate:       m.ValueDate,
		Amount:          m.Amount,
		Currency:        m.Currency,
		CounterpartyRaw: m.CounterpartyRaw,
		Description:     m.Description,
		Reference:       m.Reference,
		ContentHash:     m.ContentHash,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

// SaveTransactionsInTx bulk-inserts transactions inside an import transaction.
// ON CONFLICT DO NOTHING covers the race where the same line arrives in two
// concurrent imports after the hash pre-check.
func (r *PgxTransactionRepository) SaveTransactionsInTx(ctx context.Context, tx pgx.Tx, transactions []domain.Transaction) error {
	query := `
		INSERT INTO transactions (transaction_id, statement_id, account_ref, booking_date, value_date, amount, currency, counterparty_raw, description, reference, content_hash, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (created_by, content_hash) DO NOTHING;
	`
	batch := &pgx.Batch{}
	for _, txn := range transactions {
		m := toModelTransaction(txn)
		batch.Queue(query,
			m.TransactionID,
			m.StatementID,
			nullableString(m.AccountRef),
			m.BookingDate,
			m.ValueDate,
			m.Amount,
			m.Currency,
			nullableString(m.CounterpartyRaw),
			nullableString(m.Description),
			m.Reference,
			m.ContentHash,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range transactions {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to save transactions batch: %w", err)
		}
	}
	return nil
}

// FindTransactionByID retrieves a transaction by its ID.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := transactionSelect + ` WHERE transaction_id = $1;`
	m, err := scanTransaction(r.pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}
	d := toDomainTransaction(m)
	return &d, nil
}

// ListTransactionsInPeriod retrieves a user's transactions booked in [from, to].
func (r *PgxTransactionRepository) ListTransactionsInPeriod(ctx context.Context, userID string, from time.Time, to time.Time) ([]domain.Transaction, error) {
	query := transactionSelect + `
		WHERE created_by = $1 AND booking_date >= $2 AND booking_date <= $3
		ORDER BY booking_date, transaction_id;
	`
	rows, err := r.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for user %s: %w", userID, err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		transactions = append(transactions, toDomainTransaction(m))
	}
	return transactions, rows.Err()
}

// FindExistingContentHashes returns which of the given hashes already exist
// for the user.
func (r *PgxTransactionRepository) FindExistingContentHashes(ctx context.Context, userID string, hashes []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(hashes) == 0 {
		return existing, nil
	}

	query := `
		SELECT content_hash
		FROM transactions
		WHERE created_by = $1 AND content_hash = ANY($2);
	`
	rows, err := r.pool.Query(ctx, query, userID, hashes)
	if err != nil {
		return nil, fmt.Errorf("failed to query content hashes for user %s: %w", userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("failed to scan content hash: %w", err)
		}
		existing[hash] = true
	}
	return existing, rows.Err()
}

const transactionSelect = `
	SELECT transaction_id, statement_id, account_ref, booking_date, value_date, amount, currency, counterparty_raw, description, reference, content_hash, created_at, created_by, last_updated_at, last_updated_by
	FROM transactions`

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	var accountRef, counterparty, description sql.NullString
	err := row.Scan(
		&m.TransactionID,
		&m.StatementID,
		&accountRef,
		&m.BookingDate,
		&m.ValueDate,
		&m.Amount,
		&m.Currency,
		&counterparty,
		&description,
		&m.Reference,
		&m.ContentHash,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	m.AccountRef = accountRef.String
	m.CounterpartyRaw = counterparty.String
	m.Description = description.String
	return m, err
}
