// Package notify delivers invitation notifications to invitees.
//
// Delivery is best effort: senders report errors to their caller, and the
// invitation workflow logs and discards them.
package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wolfeidau/membership/internal/models"
)

const noMessage = "No message provided."

// Sender delivers a notification.
type Sender interface {
	Send(ctx context.Context, n *Notification) error
}

// Notification is an invitation rendered for delivery.
type Notification struct {
	InvitationID     uuid.UUID `json:"invitation_id"`
	OrganizationID   uuid.UUID `json:"organization_id"`
	OrganizationName string    `json:"organization_name"`
	RecipientID      uuid.UUID `json:"recipient_id"`
	RecipientEmail   string    `json:"recipient_email"`
	RecipientName    string    `json:"recipient_name"`
	Message          string    `json:"message,omitempty"`
	Subject          string    `json:"subject"`
	Body             string    `json:"body"`
}

// NewNotification renders the invitation of invitee to org.
func NewNotification(inv *models.Invitation, invitee *models.User, org *models.Organization) *Notification {
	n := &Notification{
		InvitationID:     inv.ID,
		OrganizationID:   org.ID,
		OrganizationName: org.Name,
		RecipientID:      invitee.ID,
		RecipientEmail:   invitee.Email,
		RecipientName:    invitee.FullName,
	}
	if inv.Message != nil {
		n.Message = *inv.Message
	}

	n.Subject = fmt.Sprintf("You have been invited to join %s!", org.Name)
	n.Body = renderBody(n)

	return n
}

func renderBody(n *Notification) string {
	message := n.Message
	if message == "" {
		message = noMessage
	}

	return fmt.Sprintf(`Hello %s,

You have received an invitation to join the organization %q.

Message from the sender:
%q

Please log in to the application to accept or reject this invitation.
`, n.RecipientName, n.OrganizationName, message)
}
