package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	membershipv1 "github.com/wolfeidau/membership/api/membership/v1"
	"github.com/wolfeidau/membership/internal/client"
	"github.com/wolfeidau/membership/internal/models"
)

type UserCmd struct {
	Create     UserCreateCmd     `cmd:"" help:"Create a user; without credentials this bootstraps the first admin"`
	Update     UserUpdateCmd     `cmd:"" help:"Change a user's full name"`
	Delete     UserDeleteCmd     `cmd:"" help:"Mark a user deleted"`
	Activate   UserActivateCmd   `cmd:"" help:"Activate a pending or inactive user"`
	Deactivate UserDeactivateCmd `cmd:"" help:"Deactivate a user"`
	Get        UserGetCmd        `cmd:"" help:"Show a user by ID or email"`
	List       UserListCmd       `cmd:"" help:"List users"`
	Search     UserSearchCmd     `cmd:"" help:"Search users by name"`
	Orgs       UserOrgsCmd       `cmd:"" help:"List the organizations a user belongs to"`
}

type UserCreateCmd struct {
	Email    string      `arg:"" help:"Email address"`
	FullName string      `arg:"" help:"Full name"`
	Role     models.Role `help:"Role (ADMIN, MANAGER, USER)" default:"USER"`
}

func (c *UserCreateCmd) Run(ctx context.Context, globals *Globals) error {
	cl, err := globals.client()
	if err != nil {
		return err
	}

	user, err := cl.CreateUser(ctx, &membershipv1.CreateUserRequest{
		Email:    c.Email,
		FullName: c.FullName,
		Role:     c.Role,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	printUsers([]*models.User{user})
	return nil
}

type UserUpdateCmd struct {
	UserID   uuid.UUID `arg:"" help:"User ID"`
	FullName string    `arg:"" help:"New full name"`
}

func (c *UserUpdateCmd) Run(ctx context.Context, globals *Globals) error {
	cl, err := globals.client()
	if err != nil {
		return err
	}

	user, err := cl.UpdateUser(ctx, c.UserID, c.FullName)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	printUsers([]*models.User{user})
	return nil
}

type UserDeleteCmd struct {
	UserID uuid.UUID `arg:"" help:"User ID"`
}

func (c *UserDeleteCmd) Run(ctx context.Context, globals *Globals) error {
	return changeUser(ctx, globals, c.UserID, (*client.Client).DeleteUser)
}

type UserActivateCmd struct {
	UserID uuid.UUID `arg:"" help:"User ID"`
}

func (c *UserActivateCmd) Run(ctx context.Context, globals *Globals) error {
	return changeUser(ctx, globals, c.UserID, (*client.Client).ActivateUser)
}

type UserDeactivateCmd struct {
	UserID uuid.UUID `arg:"" help:"User ID"`
}

func (c *UserDeactivateCmd) Run(ctx context.Context, globals *Globals) error {
	return changeUser(ctx, globals, c.UserID, (*client.Client).DeactivateUser)
}

func changeUser(ctx context.Context, globals *Globals, userID uuid.UUID, change func(*client.Client, context.Context, uuid.UUID) (*models.User, error)) error {
	cl, err := globals.client()
	if err != nil {
		return err
	}

	user, err := change(cl, ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to change user %s: %w", userID, err)
	}

	printUsers([]*models.User{user})
	return nil
}

type UserGetCmd struct {
	ID string `arg:"" help:"User ID or email address"`
}

func (c *UserGetCmd) Run(ctx context.Context, globals *Globals) error {
	cl, err := globals.client()
	if err != nil {
		return err
	}

	user, err := getUser(ctx, cl, c.ID)
	if err != nil {
		return err
	}

	printUsers([]*models.User{user})
	fmt.Printf("\nOrganizations: %d\n", len(user.OrganizationIDs))
	for _, orgID := range user.OrganizationIDs {
		fmt.Printf("  %s\n", orgID)
	}
	return nil
}

// getUser resolves a user by ID, falling back to email lookup.
func getUser(ctx context.Context, cl *client.Client, idOrEmail string) (*models.User, error) {
	if id, err := uuid.Parse(idOrEmail); err == nil {
		user, err := cl.GetUser(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		return user, nil
	}

	user, err := cl.GetUserByEmail(ctx, idOrEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", idOrEmail, err)
	}
	return user, nil
}

type UserListCmd struct {
	PageFlags
}

func (c *UserListCmd) Run(ctx context.Context, globals *Globals) error {
	cl, err := globals.client()
	if err != nil {
		return err
	}

	list, err := cl.ListUsers(ctx, &membershipv1.ListUsersRequest{Page: c.page()})
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	printUsers(list.Items)
	printPageSummary(len(list.Items), list.Offset, list.Total)
	return nil
}

type UserSearchCmd struct {
	Name string `arg:"" help:"Name fragment, matched without regard to case or accents"`
	PageFlags
}

func (c *UserSearchCmd) Run(ctx context.Context, globals *Globals) error {
	cl, err := globals.client()
	if err != nil {
		return err
	}

	list, err := cl.SearchUsers(ctx, &membershipv1.SearchUsersRequest{Name: c.Name, Page: c.page()})
	if err != nil {
		return fmt.Errorf("failed to search users: %w", err)
	}

	printUsers(list.Items)
	printPageSummary(len(list.Items), list.Offset, list.Total)
	return nil
}

type UserOrgsCmd struct {
	UserID uuid.UUID `arg:"" help:"User ID"`
	PageFlags
}

func (c *UserOrgsCmd) Run(ctx context.Context, globals *Globals) error {
	cl, err := globals.client()
	if err != nil {
		return err
	}

	list, err := cl.ListUserOrganizations(ctx, &membershipv1.ListUserOrganizationsRequest{UserID: c.UserID, Page: c.page()})
	if err != nil {
		return fmt.Errorf("failed to list organizations: %w", err)
	}

	printOrganizations(list.Items)
	printPageSummary(len(list.Items), list.Offset, list.Total)
	return nil
}
