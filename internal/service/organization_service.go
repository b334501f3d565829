package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/membership/internal/auth"
	"github.com/wolfeidau/membership/internal/models"
	"github.com/wolfeidau/membership/internal/store"
)

// OrganizationService manages organizations and reads their membership.
type OrganizationService struct {
	gate  *auth.Gate
	users store.UserStore
	orgs  store.OrganizationStore
	opts  options
}

// NewOrganizationService creates an organization service.
func NewOrganizationService(stores Stores, gate *auth.Gate, opts ...Option) *OrganizationService {
	return &OrganizationService{
		gate:  gate,
		users: stores.Users,
		orgs:  stores.Organizations,
		opts:  newOptions(opts),
	}
}

// CreateOrganizationInput carries the fields of a new organization.
type CreateOrganizationInput struct {
	Name           string `json:"name"`
	RegistryNumber string `json:"registry_number"`
	ContactEmail   string `json:"contact_email"`
	CompanySize    int    `json:"company_size"`
	YearFounded    int    `json:"year_founded"`
}

// UpdateOrganizationInput carries the mutable fields of an organization.
type UpdateOrganizationInput struct {
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email"`
	CompanySize  int    `json:"company_size"`
}

// SearchOrganizationsInput filters an organization search. Zero values match everything.
type SearchOrganizationsInput struct {
	Name        string `json:"name"`
	YearFounded int    `json:"year_founded"`
	CompanySize int    `json:"company_size"`
}

func validateOrganization(name, contactEmail string, companySize int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}
	if models.NormalizeName(name) == "" {
		return fmt.Errorf("%w: name %q has no letters or digits", ErrInvalidArgument, name)
	}
	if contactEmail = strings.TrimSpace(contactEmail); contactEmail != "" {
		if _, err := mail.ParseAddress(contactEmail); err != nil {
			return fmt.Errorf("%w: contact email %q", ErrInvalidArgument, contactEmail)
		}
	}
	if companySize < 0 {
		return fmt.Errorf("%w: company size must not be negative", ErrInvalidArgument)
	}
	return nil
}

// Create registers an organization and makes its creator a member.
func (s *OrganizationService) Create(ctx context.Context, actorID uuid.UUID, in CreateOrganizationInput) (*models.Organization, error) {
	actor, err := s.gate.Authorize(ctx, actorID, models.RoleAdmin, models.RoleManager)
	if err != nil {
		return nil, err
	}

	if err := validateOrganization(in.Name, in.ContactEmail, in.CompanySize); err != nil {
		return nil, err
	}
	in.RegistryNumber = strings.TrimSpace(in.RegistryNumber)
	if in.RegistryNumber == "" {
		return nil, fmt.Errorf("%w: registry number is required", ErrInvalidArgument)
	}

	org := &models.Organization{
		ID:             uuid.Must(uuid.NewV7()),
		RegistryNumber: in.RegistryNumber,
		ContactEmail:   strings.TrimSpace(in.ContactEmail),
		CompanySize:    in.CompanySize,
		YearFounded:    in.YearFounded,
	}
	org.SetName(strings.TrimSpace(in.Name))
	org.Stamp(actor.ID, s.opts.clock.Now())

	if err := s.orgs.Create(ctx, org, actor.ID); err != nil {
		return nil, translate("create organization", err)
	}

	log.Info().
		Str("org_id", org.ID.String()).
		Str("registry_number", org.RegistryNumber).
		Str("actor_id", actor.ID.String()).
		Msg("Organization created")

	return org, nil
}

// Update changes the mutable fields of an organization.
func (s *OrganizationService) Update(ctx context.Context, orgID, actorID uuid.UUID, in UpdateOrganizationInput) (*models.Organization, error) {
	actor, err := s.gate.Authorize(ctx, actorID, models.RoleAdmin, models.RoleManager)
	if err != nil {
		return nil, err
	}

	if err := validateOrganization(in.Name, in.ContactEmail, in.CompanySize); err != nil {
		return nil, err
	}

	org, err := s.orgs.Get(ctx, orgID)
	if err != nil {
		return nil, translate("get organization", err)
	}

	org.SetName(strings.TrimSpace(in.Name))
	org.ContactEmail = strings.TrimSpace(in.ContactEmail)
	org.CompanySize = in.CompanySize
	org.Touch(actor.ID, s.opts.clock.Now())

	if err := s.orgs.Update(ctx, org); err != nil {
		return nil, translate("update organization", err)
	}

	log.Info().
		Str("org_id", org.ID.String()).
		Str("actor_id", actor.ID.String()).
		Msg("Organization updated")

	return org, nil
}

// Delete removes an organization together with its memberships and invitations.
func (s *OrganizationService) Delete(ctx context.Context, orgID, actorID uuid.UUID) error {
	actor, err := s.gate.Authorize(ctx, actorID, models.RoleAdmin)
	if err != nil {
		return err
	}

	if err := s.orgs.Delete(ctx, orgID); err != nil {
		return translate("delete organization", err)
	}

	log.Info().
		Str("org_id", orgID.String()).
		Str("actor_id", actor.ID.String()).
		Msg("Organization deleted")

	return nil
}

// Get returns an organization by id.
func (s *OrganizationService) Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	org, err := s.orgs.Get(ctx, orgID)
	if err != nil {
		return nil, translate("get organization", err)
	}
	return org, nil
}

// GetByRegistryNumber returns an organization by its registry number.
func (s *OrganizationService) GetByRegistryNumber(ctx context.Context, registryNumber string) (*models.Organization, error) {
	org, err := s.orgs.GetByRegistryNumber(ctx, strings.TrimSpace(registryNumber))
	if err != nil {
		return nil, translate("get organization", err)
	}
	return org, nil
}

// Search finds organizations whose normalized name contains the normalized
// query and whose founding year and size match exactly when given.
func (s *OrganizationService) Search(ctx context.Context, in SearchOrganizationsInput, page store.Page) (*Listing[*models.Organization], error) {
	filter := store.OrganizationFilter{
		NameContains: models.NormalizeName(in.Name),
		YearFounded:  in.YearFounded,
		CompanySize:  in.CompanySize,
	}

	orgs, total, err := s.orgs.Search(ctx, filter, page)
	if err != nil {
		return nil, translate("search organizations", err)
	}

	return newListing(orgs, total, page), nil
}

// ListUsers lists the members of an organization. Managers may only list
// organizations they belong to.
func (s *OrganizationService) ListUsers(ctx context.Context, orgID, actorID uuid.UUID, page store.Page) (*Listing[*models.User], error) {
	actor, err := s.gate.Authorize(ctx, actorID, models.RoleAdmin, models.RoleManager)
	if err != nil {
		return nil, err
	}

	if _, err := s.orgs.Get(ctx, orgID); err != nil {
		return nil, translate("get organization", err)
	}

	if actor.Role != models.RoleAdmin && !actor.IsMemberOf(orgID) {
		return nil, fmt.Errorf("%w: manager %s is not a member of organization %s", ErrAccessDenied, actor.ID, orgID)
	}

	users, total, err := s.users.List(ctx, store.UserFilter{OrganizationID: orgID}, page)
	if err != nil {
		return nil, translate("list users", err)
	}

	return newListing(users, total, page), nil
}
