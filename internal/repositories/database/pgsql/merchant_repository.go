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

type PgxMerchantRepository struct {
	pool *pgxpool.Pool
}

// newPgxMerchantRepository creates a new repository for canonical merchant data.
func newPgxMerchantRepository(pool *pgxpool.Pool) portsrepo.MerchantRepositoryFacade {
	return &PgxMerchantRepository{pool: pool}
}

// Ensure PgxMerchantRepository implements portsrepo.MerchantRepositoryFacade
var _ portsrepo.MerchantRepositoryFacade = (*PgxMerchantRepository)(nil)

// SaveMerchant inserts a merchant and its initial aliases.
func (r *PgxMerchantRepository) SaveMerchant(ctx context.Context, merchant domain.CanonicalMerchant) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin merchant insert: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := `
		INSERT INTO merchants (merchant_id, display_name, vat_number, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err = tx.Exec(ctx, query,
		merchant.MerchantID,
		merchant.DisplayName,
		nullableString(merchant.VATNumber),
		merchant.CreatedAt,
		merchant.CreatedBy,
		merchant.LastUpdatedAt,
		merchant.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: merchant %s", apperrors.ErrDuplicate, merchant.DisplayName)
		}
		return fmt.Errorf("failed to save merchant %s: %w", merchant.MerchantID, err)
	}

	for _, alias := range merchant.Aliases {
		if err := insertAlias(ctx, tx, merchant.MerchantID, alias, merchant.CreatedBy, merchant.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// AddMerchantAlias records a newly learned alias for a merchant. Concurrent
// learners racing on the same counterparty text keep the first writer's row.
func (r *PgxMerchantRepository) AddMerchantAlias(ctx context.Context, merchantID string, alias string, userID string, now time.Time) error {
	query := `
		INSERT INTO merchant_aliases (merchant_id, alias, normalized, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (normalized) DO NOTHING;
	`
	_, err := r.pool.Exec(ctx, query,
		merchantID,
		alias,
		domain.NormalizeMerchantText(alias),
		now,
		userID,
		now,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to save alias %q for merchant %s: %w", alias, merchantID, err)
	}
	return nil
}

// insertAlias writes one alias row inside a merchant insert. A normalized
// collision with an alias of another merchant surfaces as ErrDuplicate and
// rolls the whole merchant back, so the caller can resolve to the existing
// alias owner instead of creating a merchant with a missing alias.
func insertAlias(ctx context.Context, tx pgx.Tx, merchantID, alias, userID string, now time.Time) error {
	query := `
		INSERT INTO merchant_aliases (merchant_id, alias, normalized, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := tx.Exec(ctx, query,
		merchantID,
		alias,
		domain.NormalizeMerchantText(alias),
		now,
		userID,
		now,
		userID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: alias %q", apperrors.ErrDuplicate, alias)
		}
		return fmt.Errorf("failed to save alias %q for merchant %s: %w", alias, merchantID, err)
	}
	return nil
}

// FindMerchantByID retrieves a merchant by its ID.
func (r *PgxMerchantRepository) FindMerchantByID(ctx context.Context, merchantID string) (*domain.CanonicalMerchant, error) {
	query := merchantQuery(`WHERE m.merchant_id = $1`) + `;`
	return r.queryOne(ctx, query, merchantID)
}

// FindMerchantByVAT retrieves a merchant by its Swiss VAT number.
func (r *PgxMerchantRepository) FindMerchantByVAT(ctx context.Context, vatNumber string) (*domain.CanonicalMerchant, error) {
	query := merchantQuery(`WHERE m.vat_number = $1`) + `;`
	return r.queryOne(ctx, query, vatNumber)
}

// FindMerchantByAlias retrieves the merchant owning a normalized alias.
func (r *PgxMerchantRepository) FindMerchantByAlias(ctx context.Context, normalizedAlias string) (*domain.CanonicalMerchant, error) {
	query := merchantQuery(`WHERE m.merchant_id IN (SELECT merchant_id FROM merchant_aliases WHERE normalized = $1)`) + `;`
	return r.queryOne(ctx, query, normalizedAlias)
}

// ListMerchants retrieves a paginated list of merchants with their aliases.
func (r *PgxMerchantRepository) ListMerchants(ctx context.Context, limit int, offset int) ([]domain.CanonicalMerchant, error) {
	query := merchantQuery(``) + `
		ORDER BY m.display_name
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list merchants: %w", err)
	}
	defer rows.Close()

	var merchants []domain.CanonicalMerchant
	for rows.Next() {
		m, err := scanMerchant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan merchant row: %w", err)
		}
		merchants = append(merchants, m)
	}
	return merchants, rows.Err()
}

func (r *PgxMerchantRepository) queryOne(ctx context.Context, query string, arg any) (*domain.CanonicalMerchant, error) {
	m, err := scanMerchant(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find merchant: %w", err)
	}
	return &m, nil
}

// merchantQuery aggregates aliases in one round trip; the where clause slots
// in before the GROUP BY.
func merchantQuery(where string) string {
	return `
	SELECT m.merchant_id, m.display_name, m.vat_number,
	       COALESCE(array_agg(a.alias) FILTER (WHERE a.alias IS NOT NULL), '{}'),
	       m.created_at, m.created_by, m.last_updated_at, m.last_updated_by
	FROM merchants m
	LEFT JOIN merchant_aliases a ON a.merchant_id = m.merchant_id
	` + where + `
	GROUP BY m.merchant_id`
}

func scanMerchant(row pgx.Row) (domain.CanonicalMerchant, error) {
	var m models.Merchant
	var vat sql.NullString
	var aliases []string
	err := row.Scan(
		&m.MerchantID,
		&m.DisplayName,
		&vat,
		&aliases,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	m.VATNumber = vat.String
	return toDomainMerchant(m, aliases), err
}

func toDomainMerchant(m models.Merchant, aliases []string) domain.CanonicalMerchant {
	return domain.CanonicalMerchant{
		MerchantID:  m.MerchantID,
		DisplayName: m.DisplayName,
		VATNumber:   m.VATNumber,
		Aliases:     aliases,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}
