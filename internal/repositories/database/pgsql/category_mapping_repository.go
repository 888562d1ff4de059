package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/silvioiatech/umbra-accountant/internal/apperrors"
	"github.com/silvioiatech/umbra-accountant/internal/core/domain"
	portsrepo "github.com/silvioiatech/umbra-accountant/internal/core/ports/repositories"
	"github.com/silvioiatech/umbra-accountant/internal/models"
)

type PgxCategoryMappingRepository struct {
	pool *pgxpool.Pool
}

// newPgxCategoryMappingRepository creates a new repository for category mappings.
func newPgxCategoryMappingRepository(pool *pgxpool.Pool) portsrepo.CategoryMappingRepositoryFacade {
	return &PgxCategoryMappingRepository{pool: pool}
}

// Ensure PgxCategoryMappingRepository implements the facade
var _ portsrepo.CategoryMappingRepositoryFacade = (*PgxCategoryMappingRepository)(nil)

func toDomainMapping(m models.CategoryMapping) domain.CategoryMapping {
	return domain.CategoryMapping{
		MappingID:         m.MappingID,
		UserID:            m.UserID,
		MerchantCategory:  m.MerchantCategory,
		DeductionCategory: m.DeductionCategory,
		Confidence:        m.Confidence,
		UserOverride:      m.UserOverride,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

// UpsertMapping inserts or replaces the user's mapping for a merchant category.
// A learned row never downgrades a user override.
func (r *PgxCategoryMappingRepository) UpsertMapping(ctx context.Context, mapping domain.CategoryMapping) error {
	query := `
		INSERT INTO category_mappings (mapping_id, user_id, merchant_category, deduction_category, confidence, user_override, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, merchant_category) DO UPDATE
		SET deduction_category = EXCLUDED.deduction_category,
		    confidence = EXCLUDED.confidence,
		    user_override = EXCLUDED.user_override,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by
		WHERE category_mappings.user_override = false OR EXCLUDED.user_override = true;
	`
	_, err := r.pool.Exec(ctx, query,
		mapping.MappingID,
		mapping.UserID,
		mapping.MerchantCategory,
		mapping.DeductionCategory,
		mapping.Confidence,
		mapping.UserOverride,
		mapping.CreatedAt,
		mapping.CreatedBy,
		mapping.LastUpdatedAt,
		mapping.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert mapping for %q: %w", mapping.MerchantCategory, err)
	}
	return nil
}

// FindMappingForMerchantCategory retrieves the user's mapping for a merchant category.
func (r *PgxCategoryMappingRepository) FindMappingForMerchantCategory(ctx context.Context, userID string, merchantCategory string) (*domain.CategoryMapping, error) {
	query := mappingSelect + ` WHERE user_id = $1 AND merchant_category = $2;`
	m, err := scanMapping(r.pool.QueryRow(ctx, query, userID, merchantCategory))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find mapping for %q: %w", merchantCategory, err)
	}
	d := toDomainMapping(m)
	return &d, nil
}

// ListMappings retrieves all mappings for a user.
func (r *PgxCategoryMappingRepository) ListMappings(ctx context.Context, userID string) ([]domain.CategoryMapping, error) {
	query := mappingSelect + `
		WHERE user_id = $1
		ORDER BY merchant_category;
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list mappings for user %s: %w", userID, err)
	}
	defer rows.Close()

	var mappings []domain.CategoryMapping
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mapping row: %w", err)
		}
		mappings = append(mappings, toDomainMapping(m))
	}
	return mappings, rows.Err()
}

const mappingSelect = `
	SELECT mapping_id, user_id, merchant_category, deduction_category, confidence, user_override, created_at, created_by, last_updated_at, last_updated_by
	FROM category_mappings`

func scanMapping(row pgx.Row) (models.CategoryMapping, error) {
	var m models.CategoryMapping
	err := row.Scan(
		&m.MappingID,
		&m.UserID,
		&m.MerchantCategory,
		&m.DeductionCategory,
		&m.Confidence,
		&m.UserOverride,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}
