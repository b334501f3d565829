package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/membership/internal/models"
)

// Sentinel errors for invitation store operations
var (
	ErrInvitationNotFound = errors.New("invitation not found")

	// ErrPendingInvitationExists is returned when a second PENDING invitation is
	// created for the same user and organization.
	ErrPendingInvitationExists = errors.New("pending invitation already exists")

	// ErrInvitationStatusChanged is returned when a conditional write finds the
	// invitation no longer in the expected status.
	ErrInvitationStatusChanged = errors.New("invitation status changed")
)

// InvitationStore defines the interface for invitation storage operations.
type InvitationStore interface {
	// Create inserts a new invitation.
	// Returns ErrPendingInvitationExists if a PENDING invitation exists for the same pair.
	Create(ctx context.Context, inv *models.Invitation) error

	// Get retrieves an invitation by ID.
	// Returns ErrInvitationNotFound if the invitation doesn't exist.
	Get(ctx context.Context, invitationID uuid.UUID) (*models.Invitation, error)

	// LatestForPair returns the most recently created invitation for a user and organization.
	// Returns ErrInvitationNotFound if none exists.
	LatestForPair(ctx context.Context, userID, orgID uuid.UUID) (*models.Invitation, error)

	// Transition writes inv.Status and its update attribution, provided the stored
	// status is still from. Moving to ACCEPTED also grants the invitee membership of
	// the organization in the same transaction.
	// Returns ErrInvitationNotFound or ErrInvitationStatusChanged.
	Transition(ctx context.Context, inv *models.Invitation, from models.InvitationStatus) error

	// Delete removes an invitation provided its stored status is still from.
	// Returns ErrInvitationNotFound or ErrInvitationStatusChanged.
	Delete(ctx context.Context, invitationID uuid.UUID, from models.InvitationStatus) error

	// ListByUser returns one page of invitations addressed to a user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, page Page) ([]*models.Invitation, int, error)

	// ListByOrganization returns one page of invitations for an organization, newest first.
	ListByOrganization(ctx context.Context, orgID uuid.UUID, page Page) ([]*models.Invitation, int, error)

	// ListStale returns every invitation in the given status created before the cutoff, oldest first.
	ListStale(ctx context.Context, status models.InvitationStatus, before time.Time) ([]*models.Invitation, error)
}
