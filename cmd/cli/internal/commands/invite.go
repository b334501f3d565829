package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	membershipv1 "github.com/wolfeidau/membership/api/membership/v1"
	"github.com/wolfeidau/membership/internal/models"
)

type InviteCmd struct {
	Send   InviteSendCmd   `cmd:"" help:"Invite a user to an organization"`
	Accept InviteAcceptCmd `cmd:"" help:"Accept an invitation"`
	Reject InviteRejectCmd `cmd:"" help:"Reject an invitation"`
	Delete InviteDeleteCmd `cmd:"" help:"Withdraw a pending invitation"`
	Get    InviteGetCmd    `cmd:"" help:"Show an invitation"`
	List   InviteListCmd   `cmd:"" help:"List invitations of a user or an organization"`
	Bulk   InviteBulkCmd   `cmd:"" help:"Send invitations listed in a YAML manifest"`
}

type InviteSendCmd struct {
	User           string    `arg:"" help:"User ID or email address of the invitee"`
	OrganizationID uuid.UUID `arg:"" help:"Organization ID"`
	Message        string    `help:"Personal message included in the notification"`
}

func (c *InviteSendCmd) Run(ctx context.Context, globals *Globals) error {
	cl, err := globals.client()
	if err != nil {
		return err
	}

	invitee, err := getUser(ctx, cl, c.User)
	if err != nil {
		return err
	}

	req := &membershipv1.SendInvitationRequest{UserID: invitee.ID, OrganizationID: c.OrganizationID}
	if c.Message != "" {
		req.Message = &c.Message
	}

	inv, err := cl.SendInvitation(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to send invitation: %w", err)
	}

	printInvitations([]*models.Invitation{inv})
	return nil
}

type InviteAcceptCmd struct {
	InvitationID uuid.UUID `arg:"" help:"Invitation ID"`
}

func (c *InviteAcceptCmd) Run(ctx context.Context, globals *Globals) error {
	return setInvitationStatus(ctx, globals, c.InvitationID, models.InvitationStatusAccepted)
}

type InviteRejectCmd struct {
	InvitationID uuid.UUID `arg:"" help:"Invitation ID"`
}

func (c *InviteRejectCmd) Run(ctx context.Context, globals *Globals) error {
	return setInvitationStatus(ctx, globals, c.InvitationID, models.InvitationStatusRejected)
}

func setInvitationStatus(ctx context.Context, globals *Globals, invitationID uuid.UUID, status models.InvitationStatus) error {
	cl, err := globals.client()
	if err != nil {
		return err
	}

	inv, err := cl.SetInvitationStatus(ctx, invitationID, status)
	if err != nil {
		return fmt.Errorf("failed to set invitation status: %w", err)
	}

	printInvitations([]*models.Invitation{inv})
	return nil
}

type InviteDeleteCmd struct {
	InvitationID uuid.UUID `arg:"" help:"Invitation ID"`
}

func (c *InviteDeleteCmd) Run(ctx context.Context, globals *Globals) error {
	cl, err := globals.client()
	if err != nil {
		return err
	}

	if err := cl.DeleteInvitation(ctx, c.InvitationID); err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}

	fmt.Printf("Deleted invitation %s\n", c.InvitationID)
	return nil
}

type InviteGetCmd struct {
	InvitationID uuid.UUID `arg:"" help:"Invitation ID"`
}

func (c *InviteGetCmd) Run(ctx context.Context, globals *Globals) error {
	cl, err := globals.client()
	if err != nil {
		return err
	}

	inv, err := cl.GetInvitation(ctx, c.InvitationID)
	if err != nil {
		return fmt.Errorf("failed to get invitation: %w", err)
	}

	printInvitations([]*models.Invitation{inv})
	if inv.Message != nil {
		fmt.Printf("\nMessage: %s\n", *inv.Message)
	}
	return nil
}

type InviteListCmd struct {
	User           uuid.UUID `help:"List invitations sent to this user" xor:"target" required:""`
	OrganizationID uuid.UUID `help:"List invitations of this organization" name:"org" xor:"target" required:""`
	PageFlags
}

func (c *InviteListCmd) Run(ctx context.Context, globals *Globals) error {
	cl, err := globals.client()
	if err != nil {
		return err
	}

	var list *membershipv1.List[*models.Invitation]
	if c.User != uuid.Nil {
		list, err = cl.ListInvitationsForUser(ctx, &membershipv1.ListInvitationsForUserRequest{UserID: c.User, Page: c.page()})
	} else {
		list, err = cl.ListInvitationsForOrganization(ctx, &membershipv1.ListInvitationsForOrganizationRequest{OrganizationID: c.OrganizationID, Page: c.page()})
	}
	if err != nil {
		return fmt.Errorf("failed to list invitations: %w", err)
	}

	printInvitations(list.Items)
	printPageSummary(len(list.Items), list.Offset, list.Total)
	return nil
}
