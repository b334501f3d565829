package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/membership/internal/models"
	"github.com/wolfeidau/membership/internal/store"
)

// InvitationStore implements store.InvitationStore on top of a shared DB.
type InvitationStore struct {
	db *DB
}

var _ store.InvitationStore = (*InvitationStore)(nil)

// Create creates a new invitation, refusing a second PENDING invitation for the same pair.
func (s *InvitationStore) Create(ctx context.Context, inv *models.Invitation) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.users[inv.UserID]; !exists {
		return store.ErrUserNotFound
	}
	if _, exists := s.db.organizations[inv.OrganizationID]; !exists {
		return store.ErrOrganizationNotFound
	}

	if inv.Status == models.InvitationStatusPending {
		for _, existing := range s.db.invitations {
			if existing.UserID == inv.UserID &&
				existing.OrganizationID == inv.OrganizationID &&
				existing.Status == models.InvitationStatusPending {
				return store.ErrPendingInvitationExists
			}
		}
	}

	s.db.invitations[inv.ID] = inv.Clone()

	return nil
}

// Get retrieves an invitation by ID.
func (s *InvitationStore) Get(ctx context.Context, invitationID uuid.UUID) (*models.Invitation, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	inv, exists := s.db.invitations[invitationID]
	if !exists {
		return nil, store.ErrInvitationNotFound
	}

	return inv.Clone(), nil
}

// LatestForPair returns the newest invitation for a user and organization.
func (s *InvitationStore) LatestForPair(ctx context.Context, userID, orgID uuid.UUID) (*models.Invitation, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var latest *models.Invitation
	for _, inv := range s.db.invitations {
		if inv.UserID != userID || inv.OrganizationID != orgID {
			continue
		}
		if latest == nil || newerFirst(inv.CreatedAt, latest.CreatedAt, inv.ID, latest.ID) {
			latest = inv
		}
	}

	if latest == nil {
		return nil, store.ErrInvitationNotFound
	}

	return latest.Clone(), nil
}

// Transition conditionally updates the status and grants membership on acceptance.
func (s *InvitationStore) Transition(ctx context.Context, inv *models.Invitation, from models.InvitationStatus) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	existing, exists := s.db.invitations[inv.ID]
	if !exists {
		return store.ErrInvitationNotFound
	}
	if existing.Status != from {
		return store.ErrInvitationStatusChanged
	}

	existing.Status = inv.Status
	existing.UpdatedAt = inv.UpdatedAt
	existing.UpdatedBy = inv.UpdatedBy

	if inv.Status == models.InvitationStatusAccepted {
		s.db.addMembership(existing.UserID, existing.OrganizationID, inv.UpdatedAt)
	}

	return nil
}

// Delete conditionally removes an invitation.
func (s *InvitationStore) Delete(ctx context.Context, invitationID uuid.UUID, from models.InvitationStatus) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	existing, exists := s.db.invitations[invitationID]
	if !exists {
		return store.ErrInvitationNotFound
	}
	if existing.Status != from {
		return store.ErrInvitationStatusChanged
	}

	delete(s.db.invitations, invitationID)

	return nil
}

// ListByUser returns a page of invitations addressed to a user, newest first.
func (s *InvitationStore) ListByUser(ctx context.Context, userID uuid.UUID, page store.Page) ([]*models.Invitation, int, error) {
	return s.list(page, func(inv *models.Invitation) bool {
		return inv.UserID == userID
	})
}

// ListByOrganization returns a page of invitations for an organization, newest first.
func (s *InvitationStore) ListByOrganization(ctx context.Context, orgID uuid.UUID, page store.Page) ([]*models.Invitation, int, error) {
	return s.list(page, func(inv *models.Invitation) bool {
		return inv.OrganizationID == orgID
	})
}

// ListStale returns invitations in status created before the cutoff, oldest first.
func (s *InvitationStore) ListStale(ctx context.Context, status models.InvitationStatus, before time.Time) ([]*models.Invitation, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var result []*models.Invitation
	for _, inv := range s.db.invitations {
		if inv.Status == status && inv.CreatedAt.Before(before) {
			result = append(result, inv.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return newerFirst(result[j].CreatedAt, result[i].CreatedAt, result[j].ID, result[i].ID)
	})

	return result, nil
}

func (s *InvitationStore) list(page store.Page, match func(*models.Invitation) bool) ([]*models.Invitation, int, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var matched []*models.Invitation
	for _, inv := range s.db.invitations {
		if match(inv) {
			matched = append(matched, inv)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return newerFirst(matched[i].CreatedAt, matched[j].CreatedAt, matched[i].ID, matched[j].ID)
	})

	start, end := page.Window(len(matched))
	result := make([]*models.Invitation, 0, end-start)
	for _, inv := range matched[start:end] {
		result = append(result, inv.Clone())
	}

	return result, len(matched), nil
}
