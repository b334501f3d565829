package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/wolfeidau/membership/internal/models"
	"github.com/wolfeidau/membership/internal/store"
)

// UserStore records creates and updates made through the wrapped store.
type UserStore struct {
	store.UserStore
	rec *Recorder
}

var _ store.UserStore = (*UserStore)(nil)

// NewUserStore wraps inner so its mutations are audited.
func NewUserStore(inner store.UserStore, rec *Recorder) *UserStore {
	return &UserStore{UserStore: inner, rec: rec}
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	if err := s.UserStore.Create(ctx, user); err != nil {
		return err
	}
	s.rec.Created(ctx, user)
	return nil
}

func (s *UserStore) CreateFirst(ctx context.Context, user *models.User) error {
	if err := s.UserStore.CreateFirst(ctx, user); err != nil {
		return err
	}
	s.rec.Created(ctx, user)
	return nil
}

func (s *UserStore) Update(ctx context.Context, user *models.User) error {
	before, err := s.UserStore.Get(ctx, user.ID)
	if err != nil {
		return err
	}
	if err := s.UserStore.Update(ctx, user); err != nil {
		return err
	}
	s.rec.Updated(ctx, before, user)
	return nil
}

// OrganizationStore records creates and updates made through the wrapped store.
// Membership grants change no organization field and are not recorded.
type OrganizationStore struct {
	store.OrganizationStore
	rec *Recorder
}

var _ store.OrganizationStore = (*OrganizationStore)(nil)

// NewOrganizationStore wraps inner so its mutations are audited.
func NewOrganizationStore(inner store.OrganizationStore, rec *Recorder) *OrganizationStore {
	return &OrganizationStore{OrganizationStore: inner, rec: rec}
}

func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization, founderID uuid.UUID) error {
	if err := s.OrganizationStore.Create(ctx, org, founderID); err != nil {
		return err
	}
	s.rec.Created(ctx, org)
	return nil
}

func (s *OrganizationStore) Update(ctx context.Context, org *models.Organization) error {
	before, err := s.OrganizationStore.Get(ctx, org.ID)
	if err != nil {
		return err
	}
	if err := s.OrganizationStore.Update(ctx, org); err != nil {
		return err
	}
	s.rec.Updated(ctx, before, org)
	return nil
}

// InvitationStore records creates and status transitions made through the
// wrapped store. Deletion is a row removal and leaves no record.
type InvitationStore struct {
	store.InvitationStore
	rec *Recorder
}

var _ store.InvitationStore = (*InvitationStore)(nil)

// NewInvitationStore wraps inner so its mutations are audited.
func NewInvitationStore(inner store.InvitationStore, rec *Recorder) *InvitationStore {
	return &InvitationStore{InvitationStore: inner, rec: rec}
}

func (s *InvitationStore) Create(ctx context.Context, inv *models.Invitation) error {
	if err := s.InvitationStore.Create(ctx, inv); err != nil {
		return err
	}
	s.rec.Created(ctx, inv)
	return nil
}

// Transition records the invitation as it was before the change and as it is
// after, excluding the membership granted on acceptance.
func (s *InvitationStore) Transition(ctx context.Context, inv *models.Invitation, from models.InvitationStatus) error {
	before, err := s.InvitationStore.Get(ctx, inv.ID)
	if err != nil {
		return err
	}
	if err := s.InvitationStore.Transition(ctx, inv, from); err != nil {
		return err
	}
	s.rec.Updated(ctx, before, inv)
	return nil
}
