package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	membershipv1 "github.com/wolfeidau/membership/api/membership/v1"
	"github.com/wolfeidau/membership/internal/models"
)

type OrgCmd struct {
	Create  OrgCreateCmd  `cmd:"" help:"Create an organization; the caller becomes its first member"`
	Update  OrgUpdateCmd  `cmd:"" help:"Update an organization"`
	Delete  OrgDeleteCmd  `cmd:"" help:"Delete an organization"`
	Get     OrgGetCmd     `cmd:"" help:"Show an organization by ID or registry number"`
	Search  OrgSearchCmd  `cmd:"" help:"Search organizations"`
	Members OrgMembersCmd `cmd:"" help:"List the members of an organization"`
}

type OrgCreateCmd struct {
	Name           string `arg:"" help:"Organization name"`
	RegistryNumber string `help:"Registry number, unique across organizations" required:""`
	ContactEmail   string `help:"Contact email address"`
	CompanySize    int    `help:"Number of employees" required:""`
	YearFounded    int    `help:"Year the organization was founded" required:""`
}

func (c *OrgCreateCmd) Run(ctx context.Context, globals *Globals) error {
	cl, err := globals.client()
	if err != nil {
		return err
	}

	org, err := cl.CreateOrganization(ctx, &membershipv1.CreateOrganizationRequest{
		Name:           c.Name,
		RegistryNumber: c.RegistryNumber,
		ContactEmail:   c.ContactEmail,
		CompanySize:    c.CompanySize,
		YearFounded:    c.YearFounded,
	})
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}

	printOrganizations([]*models.Organization{org})
	return nil
}

type OrgUpdateCmd struct {
	OrganizationID uuid.UUID `arg:"" help:"Organization ID"`
	Name           string    `help:"Organization name" required:""`
	ContactEmail   string    `help:"Contact email address"`
	CompanySize    int       `help:"Number of employees" required:""`
}

func (c *OrgUpdateCmd) Run(ctx context.Context, globals *Globals) error {
	cl, err := globals.client()
	if err != nil {
		return err
	}

	org, err := cl.UpdateOrganization(ctx, &membershipv1.UpdateOrganizationRequest{
		OrganizationID: c.OrganizationID,
		Name:           c.Name,
		ContactEmail:   c.ContactEmail,
		CompanySize:    c.CompanySize,
	})
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}

	printOrganizations([]*models.Organization{org})
	return nil
}

type OrgDeleteCmd struct {
	OrganizationID uuid.UUID `arg:"" help:"Organization ID"`
}

func (c *OrgDeleteCmd) Run(ctx context.Context, globals *Globals) error {
	cl, err := globals.client()
	if err != nil {
		return err
	}

	if err := cl.DeleteOrganization(ctx, c.OrganizationID); err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	fmt.Printf("Deleted organization %s\n", c.OrganizationID)
	return nil
}

type OrgGetCmd struct {
	ID string `arg:"" help:"Organization ID or registry number"`
}

func (c *OrgGetCmd) Run(ctx context.Context, globals *Globals) error {
	cl, err := globals.client()
	if err != nil {
		return err
	}

	var org *models.Organization
	if id, parseErr := uuid.Parse(c.ID); parseErr == nil {
		org, err = cl.GetOrganization(ctx, id)
	} else {
		org, err = cl.GetOrganizationByRegistryNumber(ctx, c.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to get organization: %w", err)
	}

	printOrganizations([]*models.Organization{org})
	if org.ContactEmail != "" {
		fmt.Printf("\nContact: %s\n", org.ContactEmail)
	}
	return nil
}

type OrgSearchCmd struct {
	Name        string `help:"Name fragment, matched without regard to case or accents"`
	YearFounded int    `help:"Exact founding year"`
	CompanySize int    `help:"Exact company size"`
	PageFlags
}

func (c *OrgSearchCmd) Run(ctx context.Context, globals *Globals) error {
	cl, err := globals.client()
	if err != nil {
		return err
	}

	list, err := cl.SearchOrganizations(ctx, &membershipv1.SearchOrganizationsRequest{
		Name:        c.Name,
		YearFounded: c.YearFounded,
		CompanySize: c.CompanySize,
		Page:        c.page(),
	})
	if err != nil {
		return fmt.Errorf("failed to search organizations: %w", err)
	}

	printOrganizations(list.Items)
	printPageSummary(len(list.Items), list.Offset, list.Total)
	return nil
}

type OrgMembersCmd struct {
	OrganizationID uuid.UUID `arg:"" help:"Organization ID"`
	PageFlags
}

func (c *OrgMembersCmd) Run(ctx context.Context, globals *Globals) error {
	cl, err := globals.client()
	if err != nil {
		return err
	}

	list, err := cl.ListOrganizationUsers(ctx, &membershipv1.ListOrganizationUsersRequest{
		OrganizationID: c.OrganizationID,
		Page:           c.page(),
	})
	if err != nil {
		return fmt.Errorf("failed to list members: %w", err)
	}

	printUsers(list.Items)
	printPageSummary(len(list.Items), list.Offset, list.Total)
	return nil
}
