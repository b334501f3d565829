package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/membership/internal/models"
	"github.com/wolfeidau/membership/internal/store"
)

// OrganizationStore implements store.OrganizationStore on top of a shared DB.
type OrganizationStore struct {
	db *DB
}

var _ store.OrganizationStore = (*OrganizationStore)(nil)

// NewOrganizationStore creates an organization store over its own empty database.
func NewOrganizationStore() *OrganizationStore {
	return NewDB().Organizations()
}

// Create creates a new organization in memory and optionally adds the founder as a member.
func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization, founderID uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, existing := range s.db.organizations {
		if existing.RegistryNumber == org.RegistryNumber {
			return store.ErrOrganizationRegistryExists
		}
	}

	if founderID != uuid.Nil {
		if _, exists := s.db.users[founderID]; !exists {
			return store.ErrUserNotFound
		}
	}

	// Clone to avoid external modifications
	clone := *org
	s.db.organizations[org.ID] = &clone

	if founderID != uuid.Nil {
		s.db.addMembership(founderID, org.ID, org.CreatedAt)
	}

	return nil
}

// Get retrieves an organization by ID.
func (s *OrganizationStore) Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	org, exists := s.db.organizations[orgID]
	if !exists {
		return nil, store.ErrOrganizationNotFound
	}

	clone := *org
	return &clone, nil
}

// GetByRegistryNumber retrieves an organization by registry number.
func (s *OrganizationStore) GetByRegistryNumber(ctx context.Context, registryNumber string) (*models.Organization, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, org := range s.db.organizations {
		if org.RegistryNumber == registryNumber {
			clone := *org
			return &clone, nil
		}
	}

	return nil, store.ErrOrganizationNotFound
}

// Update updates an existing organization.
func (s *OrganizationStore) Update(ctx context.Context, org *models.Organization) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.organizations[org.ID]; !exists {
		return store.ErrOrganizationNotFound
	}

	clone := *org
	s.db.organizations[org.ID] = &clone

	return nil
}

// Delete deletes an organization along with its memberships and invitations.
func (s *OrganizationStore) Delete(ctx context.Context, orgID uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.organizations[orgID]; !exists {
		return store.ErrOrganizationNotFound
	}

	delete(s.db.organizations, orgID)
	for _, orgs := range s.db.memberships {
		delete(orgs, orgID)
	}
	for id, inv := range s.db.invitations {
		if inv.OrganizationID == orgID {
			delete(s.db.invitations, id)
		}
	}

	return nil
}

// Search returns a page of organizations matching the filter, oldest first.
func (s *OrganizationStore) Search(ctx context.Context, filter store.OrganizationFilter, page store.Page) ([]*models.Organization, int, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var matched []*models.Organization
	for _, org := range s.db.organizations {
		if filter.NameContains != "" && !strings.Contains(org.NormalizedName, filter.NameContains) {
			continue
		}
		if filter.YearFounded != 0 && org.YearFounded != filter.YearFounded {
			continue
		}
		if filter.CompanySize != 0 && org.CompanySize != filter.CompanySize {
			continue
		}
		matched = append(matched, org)
	}

	sort.Slice(matched, func(i, j int) bool {
		return newerFirst(matched[j].CreatedAt, matched[i].CreatedAt, matched[j].ID, matched[i].ID)
	})

	return s.window(matched, page), len(matched), nil
}

// ListByMember returns a page of the organizations a user belongs to, in join order.
func (s *OrganizationStore) ListByMember(ctx context.Context, userID uuid.UUID, page store.Page) ([]*models.Organization, int, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var matched []*models.Organization
	for _, orgID := range s.db.organizationIDs(userID) {
		if org, exists := s.db.organizations[orgID]; exists {
			matched = append(matched, org)
		}
	}

	return s.window(matched, page), len(matched), nil
}

// AddMember grants a user membership of an organization.
func (s *OrganizationStore) AddMember(ctx context.Context, orgID, userID uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.organizations[orgID]; !exists {
		return store.ErrOrganizationNotFound
	}
	if _, exists := s.db.users[userID]; !exists {
		return store.ErrUserNotFound
	}

	if !s.db.addMembership(userID, orgID, time.Now()) {
		return store.ErrAlreadyMember
	}

	return nil
}

func (s *OrganizationStore) window(orgs []*models.Organization, page store.Page) []*models.Organization {
	start, end := page.Window(len(orgs))
	result := make([]*models.Organization, 0, end-start)
	for _, org := range orgs[start:end] {
		clone := *org
		result = append(result, &clone)
	}
	return result
}
