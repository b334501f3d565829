package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	membershipv1 "github.com/wolfeidau/membership/api/membership/v1"
)

type AuditCmd struct {
	EntityType string    `arg:"" help:"Entity type" enum:"User,Organization,Invitation"`
	EntityID   uuid.UUID `arg:"" help:"Entity ID"`
	PageFlags
}

func (c *AuditCmd) Run(ctx context.Context, globals *Globals) error {
	cl, err := globals.client()
	if err != nil {
		return err
	}

	list, err := cl.ListAuditLogs(ctx, &membershipv1.ListAuditLogsRequest{
		EntityType: c.EntityType,
		EntityID:   c.EntityID,
		Page:       c.page(),
	})
	if err != nil {
		return fmt.Errorf("failed to list audit records: %w", err)
	}

	printAuditLogs(list.Items)
	printPageSummary(len(list.Items), list.Offset, list.Total)
	return nil
}
