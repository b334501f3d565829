package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/membership/internal/models"
	"github.com/wolfeidau/membership/internal/store"
)

const organizationColumns = `
	o.id, o.name, o.normalized_name, o.registry_number, o.contact_email,
	o.company_size, o.year_founded, o.created_at, o.updated_at, o.created_by, o.updated_by`

// OrganizationStore implements store.OrganizationStore using PostgreSQL.
type OrganizationStore struct {
	pool *pgxpool.Pool
}

var _ store.OrganizationStore = (*OrganizationStore)(nil)

// NewOrganizationStore creates a new PostgreSQL-backed organization store.
// It shares the connection pool with other stores.
func NewOrganizationStore(pool *pgxpool.Pool) *OrganizationStore {
	return &OrganizationStore{
		pool: pool,
	}
}

// Create creates a new organization and the founder membership in one transaction.
func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization, founderID uuid.UUID) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO organizations (
				id, name, normalized_name, registry_number, contact_email,
				company_size, year_founded, created_at, updated_at, created_by, updated_by
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
			)
		`,
			org.ID,
			org.Name,
			org.NormalizedName,
			org.RegistryNumber,
			org.ContactEmail,
			org.CompanySize,
			org.YearFounded,
			org.CreatedAt,
			org.UpdatedAt,
			org.CreatedBy,
			org.UpdatedBy,
		)
		if err != nil {
			return err
		}

		if founderID == uuid.Nil {
			return nil
		}

		return addMember(ctx, tx, org.ID, founderID)
	})
	if err != nil {
		return wrapError("create organization", err)
	}

	log.Debug().
		Str("org_id", org.ID.String()).
		Str("name", org.Name).
		Str("founder_id", founderID.String()).
		Msg("Created organization")

	return nil
}

// Get retrieves an organization by ID.
func (s *OrganizationStore) Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations o WHERE o.id = $1`

	org, err := scanOrganization(s.pool.QueryRow(ctx, query, orgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	return org, nil
}

// GetByRegistryNumber retrieves an organization by registry number.
func (s *OrganizationStore) GetByRegistryNumber(ctx context.Context, registryNumber string) (*models.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations o WHERE o.registry_number = $1`

	org, err := scanOrganization(s.pool.QueryRow(ctx, query, registryNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization by registry number: %w", err)
	}

	return org, nil
}

// Update updates an existing organization.
func (s *OrganizationStore) Update(ctx context.Context, org *models.Organization) error {
	query := `
		UPDATE organizations SET
			name = $2,
			normalized_name = $3,
			contact_email = $4,
			company_size = $5,
			year_founded = $6,
			updated_at = $7,
			updated_by = $8
		WHERE id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		org.ID,
		org.Name,
		org.NormalizedName,
		org.ContactEmail,
		org.CompanySize,
		org.YearFounded,
		org.UpdatedAt,
		org.UpdatedBy,
	)
	if err != nil {
		return wrapError("update organization", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrOrganizationNotFound
	}

	log.Debug().
		Str("org_id", org.ID.String()).
		Msg("Updated organization")

	return nil
}

// Delete deletes an organization by ID.
// Memberships and invitations cascade via FK constraints.
func (s *OrganizationStore) Delete(ctx context.Context, orgID uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrOrganizationNotFound
	}

	log.Info().
		Str("org_id", orgID.String()).
		Msg("Deleted organization (and cascade-deleted memberships and invitations)")

	return nil
}

// Search returns a page of organizations matching the filter, oldest first.
func (s *OrganizationStore) Search(ctx context.Context, filter store.OrganizationFilter, page store.Page) ([]*models.Organization, int, error) {
	var conds conditions
	if filter.NameContains != "" {
		conds.add("o.normalized_name LIKE %s", containsPattern(filter.NameContains))
	}
	if filter.YearFounded != 0 {
		conds.add("o.year_founded = %s", filter.YearFounded)
	}
	if filter.CompanySize != 0 {
		conds.add("o.company_size = %s", filter.CompanySize)
	}

	return s.list(ctx, "FROM organizations o "+conds.where(), "o.created_at, o.id", conds, page)
}

// ListByMember returns a page of the organizations a user belongs to, in join order.
func (s *OrganizationStore) ListByMember(ctx context.Context, userID uuid.UUID, page store.Page) ([]*models.Organization, int, error) {
	var conds conditions
	conds.add("uo.user_id = %s", userID)

	from := "FROM organizations o JOIN user_organizations uo ON uo.organization_id = o.id " + conds.where()
	return s.list(ctx, from, "uo.joined_at, o.id", conds, page)
}

// AddMember grants a user membership of an organization.
func (s *OrganizationStore) AddMember(ctx context.Context, orgID, userID uuid.UUID) error {
	if err := addMember(ctx, s.pool, orgID, userID); err != nil {
		return wrapError("add member", err)
	}

	log.Debug().
		Str("org_id", orgID.String()).
		Str("user_id", userID.String()).
		Msg("Added organization member")

	return nil
}

func (s *OrganizationStore) list(ctx context.Context, from, orderBy string, conds conditions, page store.Page) ([]*models.Organization, int, error) {
	page = page.Normalize()

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) `+from, conds.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count organizations: %w", err)
	}

	query := `SELECT ` + organizationColumns + ` ` + from +
		` ORDER BY ` + orderBy + ` LIMIT ` + conds.next(1) + ` OFFSET ` + conds.next(2)

	rows, err := s.pool.Query(ctx, query, append(conds.args, page.Limit, page.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*models.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, org)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating organizations: %w", err)
	}

	return orgs, total, nil
}

// addMember inserts a membership row; a duplicate surfaces as a unique violation.
func addMember(ctx context.Context, q querier, orgID, userID uuid.UUID) error {
	_, err := q.Exec(ctx, `
		INSERT INTO user_organizations (user_id, organization_id) VALUES ($1, $2)
	`, userID, orgID)
	return err
}

func scanOrganization(row pgx.Row) (*models.Organization, error) {
	var org models.Organization
	err := row.Scan(
		&org.ID,
		&org.Name,
		&org.NormalizedName,
		&org.RegistryNumber,
		&org.ContactEmail,
		&org.CompanySize,
		&org.YearFounded,
		&org.CreatedAt,
		&org.UpdatedAt,
		&org.CreatedBy,
		&org.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &org, nil
}
