package models

import (
	"fmt"

	"github.com/google/uuid"
)

// InvitationStatus is the state of an invitation.
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "PENDING"
	InvitationStatusAccepted InvitationStatus = "ACCEPTED"
	InvitationStatusRejected InvitationStatus = "REJECTED"
	InvitationStatusExpired  InvitationStatus = "EXPIRED"
)

// Valid reports whether s is a known invitation status.
func (s InvitationStatus) Valid() bool {
	switch s {
	case InvitationStatusPending, InvitationStatusAccepted, InvitationStatusRejected, InvitationStatusExpired:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is permitted from s.
func (s InvitationStatus) IsTerminal() bool {
	return s == InvitationStatusAccepted || s == InvitationStatusRejected || s == InvitationStatusExpired
}

// CanTransition reports whether an invitation may move from s to next.
// Only PENDING invitations move, and only into a terminal state.
func (s InvitationStatus) CanTransition(next InvitationStatus) bool {
	return s == InvitationStatusPending && next.IsTerminal()
}

// Invitation asks a user to join an organization.
type Invitation struct {
	ID             uuid.UUID        `json:"id"` // UUIDv7
	UserID         uuid.UUID        `json:"user_id"`
	OrganizationID uuid.UUID        `json:"organization_id"`
	Message        *string          `json:"message,omitempty"`
	Status         InvitationStatus `json:"status"`

	Attribution
}

// Clone returns a copy that shares no pointers with the original.
func (i *Invitation) Clone() *Invitation {
	c := *i
	if i.Message != nil {
		msg := *i.Message
		c.Message = &msg
	}
	return &c
}

func (i *Invitation) EntityType() string  { return "Invitation" }
func (i *Invitation) EntityID() uuid.UUID { return i.ID }

func (i *Invitation) String() string {
	msg := "null"
	if i.Message != nil {
		msg = *i.Message
	}
	return fmt.Sprintf("Invitation{id=%s, userId=%s, organizationId=%s, message=%s, status=%s, createdBy=%s, updatedBy=%s}",
		i.ID, i.UserID, i.OrganizationID, msg, i.Status, i.CreatedBy, i.UpdatedBy)
}
