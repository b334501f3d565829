package notify

import (
	"context"

	"github.com/rs/zerolog/log"
)

// LogSender writes notifications to the log instead of delivering them.
type LogSender struct{}

var _ Sender = LogSender{}

func (LogSender) Send(ctx context.Context, n *Notification) error {
	log.Info().
		Str("invitation_id", n.InvitationID.String()).
		Str("org_id", n.OrganizationID.String()).
		Str("recipient", n.RecipientEmail).
		Str("subject", n.Subject).
		Msg("Invitation notification")

	return nil
}
