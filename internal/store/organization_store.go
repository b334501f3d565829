package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/membership/internal/models"
)

// Sentinel errors for organization store operations
var (
	ErrOrganizationNotFound       = errors.New("organization not found")
	ErrOrganizationRegistryExists = errors.New("organization registry number already exists")
	ErrAlreadyMember              = errors.New("user is already a member of the organization")
)

// OrganizationFilter narrows an organization search. Zero values match everything.
type OrganizationFilter struct {
	NameContains string // substring of the normalized name
	YearFounded  int
	CompanySize  int
}

// OrganizationStore defines the interface for organization storage operations.
// Organizations represent tenants, users join them through memberships.
type OrganizationStore interface {
	// Create inserts a new organization. When founderID is not uuid.Nil the founder is
	// made a member in the same transaction.
	// Returns ErrOrganizationRegistryExists if the registry number is taken.
	Create(ctx context.Context, org *models.Organization, founderID uuid.UUID) error

	// Get retrieves an organization by ID.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)

	// GetByRegistryNumber retrieves an organization by its registry number.
	// Returns ErrOrganizationNotFound if no organization has the number.
	GetByRegistryNumber(ctx context.Context, registryNumber string) (*models.Organization, error)

	// Update updates an existing organization.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Update(ctx context.Context, org *models.Organization) error

	// Delete deletes an organization by ID.
	// Memberships and invitations for the organization are removed with it.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Delete(ctx context.Context, orgID uuid.UUID) error

	// Search returns one page of organizations matching the filter, plus the total match count.
	Search(ctx context.Context, filter OrganizationFilter, page Page) ([]*models.Organization, int, error)

	// ListByMember returns one page of the organizations a user belongs to, plus the total.
	ListByMember(ctx context.Context, userID uuid.UUID, page Page) ([]*models.Organization, int, error)

	// AddMember grants a user membership of an organization.
	// Returns ErrAlreadyMember if the membership exists.
	AddMember(ctx context.Context, orgID, userID uuid.UUID) error
}
