package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/membership/internal/auth"
	"github.com/wolfeidau/membership/internal/models"
	"github.com/wolfeidau/membership/internal/store"
)

// UserService manages user accounts.
type UserService struct {
	gate  *auth.Gate
	users store.UserStore
	orgs  store.OrganizationStore
	opts  options
}

// NewUserService creates a user service.
func NewUserService(stores Stores, gate *auth.Gate, opts ...Option) *UserService {
	return &UserService{
		gate:  gate,
		users: stores.Users,
		orgs:  stores.Organizations,
		opts:  newOptions(opts),
	}
}

// CreateUserInput carries the fields of a new user.
type CreateUserInput struct {
	Email    string      `json:"email"`
	FullName string      `json:"full_name"`
	Role     models.Role `json:"role"`
}

func (in *CreateUserInput) validate() error {
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)

	if _, err := mail.ParseAddress(in.Email); err != nil {
		return fmt.Errorf("%w: email %q", ErrInvalidArgument, in.Email)
	}
	if in.FullName == "" {
		return fmt.Errorf("%w: full name is required", ErrInvalidArgument)
	}
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	if !in.Role.Valid() {
		return fmt.Errorf("%w: role %q", ErrInvalidArgument, in.Role)
	}
	return nil
}

// Create registers a user.
//
// With no creator the call is only allowed while the directory is empty, and
// creates the first administrator on behalf of the system actor. Admins
// create ACTIVE users of any role; managers create PENDING users with the USER role.
func (s *UserService) Create(ctx context.Context, creatorID uuid.UUID, in CreateUserInput) (*models.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	user := &models.User{
		ID:    uuid.Must(uuid.NewV7()),
		Email: in.Email,
		Role:  in.Role,
	}
	user.SetFullName(in.FullName)

	now := s.opts.clock.Now()

	create := s.users.Create

	if creatorID == uuid.Nil {
		create = s.users.CreateFirst

		user.Role = models.RoleAdmin
		user.Status = models.UserStatusActive
		user.Stamp(models.SystemActorID, now)
	} else {
		actor, err := s.gate.Authorize(ctx, creatorID, models.RoleAdmin, models.RoleManager)
		if err != nil {
			return nil, err
		}

		switch actor.Role {
		case models.RoleManager:
			if in.Role != models.RoleUser {
				return nil, fmt.Errorf("%w: managers may only create %s users", ErrAccessDenied, models.RoleUser)
			}
			user.Status = models.UserStatusPending
		default:
			user.Status = models.UserStatusActive
		}
		user.Stamp(actor.ID, now)
	}

	switch err := create(ctx, user); {
	case errors.Is(err, store.ErrUsersExist):
		return nil, auth.ErrUnauthenticated
	case err != nil:
		return nil, translate("create user", err)
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Str("role", string(user.Role)).
		Str("status", string(user.Status)).
		Str("actor_id", user.CreatedBy.String()).
		Msg("User created")

	return user, nil
}

// Update changes a user's full name. Users may only update themselves.
func (s *UserService) Update(ctx context.Context, userID, actorID uuid.UUID, fullName string) (*models.User, error) {
	actor, err := s.gate.Authorize(ctx, actorID, models.AllRoles...)
	if err != nil {
		return nil, err
	}

	if actor.Role == models.RoleUser && actor.ID != userID {
		return nil, fmt.Errorf("%w: users may only update themselves", ErrAccessDenied)
	}

	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, fmt.Errorf("%w: full name is required", ErrInvalidArgument)
	}

	return s.mutate(ctx, userID, actor.ID, func(u *models.User) {
		u.SetFullName(fullName)
	})
}

// Delete soft deletes a user by moving it to DELETED.
func (s *UserService) Delete(ctx context.Context, userID, actorID uuid.UUID) (*models.User, error) {
	return s.setStatus(ctx, userID, actorID, models.UserStatusDeleted)
}

// Activate moves a user to ACTIVE.
func (s *UserService) Activate(ctx context.Context, userID, actorID uuid.UUID) (*models.User, error) {
	return s.setStatus(ctx, userID, actorID, models.UserStatusActive)
}

// Deactivate moves a user to DEACTIVATED.
func (s *UserService) Deactivate(ctx context.Context, userID, actorID uuid.UUID) (*models.User, error) {
	return s.setStatus(ctx, userID, actorID, models.UserStatusDeactivated)
}

func (s *UserService) setStatus(ctx context.Context, userID, actorID uuid.UUID, status models.UserStatus) (*models.User, error) {
	actor, err := s.gate.Authorize(ctx, actorID, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, userID, actor.ID, func(u *models.User) {
		u.Status = status
	})
}

// mutate loads a user that is not DELETED, applies change and persists it.
func (s *UserService) mutate(ctx context.Context, userID, actorID uuid.UUID, change func(*models.User)) (*models.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, translate("get user", err)
	}

	if user.Status == models.UserStatusDeleted {
		return nil, fmt.Errorf("%w: user %s", ErrAlreadyDeleted, userID)
	}

	change(user)
	user.Touch(actorID, s.opts.clock.Now())

	if err := s.users.Update(ctx, user); err != nil {
		return nil, translate("update user", err)
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Str("status", string(user.Status)).
		Str("actor_id", actorID.String()).
		Msg("User updated")

	return user, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, translate("get user", err)
	}
	return user, nil
}

// GetByEmail returns a user by email address.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, translate("get user", err)
	}
	return user, nil
}

// List returns users that are not DELETED.
func (s *UserService) List(ctx context.Context, actorID uuid.UUID, page store.Page) (*Listing[*models.User], error) {
	if _, err := s.gate.Authorize(ctx, actorID, models.RoleAdmin, models.RoleManager); err != nil {
		return nil, err
	}

	users, total, err := s.users.List(ctx, store.UserFilter{ExcludeDeleted: true}, page)
	if err != nil {
		return nil, translate("list users", err)
	}

	return newListing(users, total, page), nil
}

// Search matches name against the normalized names of users.
func (s *UserService) Search(ctx context.Context, name string, page store.Page) (*Listing[*models.User], error) {
	users, total, err := s.users.List(ctx, store.UserFilter{NameContains: models.NormalizeName(name)}, page)
	if err != nil {
		return nil, translate("search users", err)
	}

	return newListing(users, total, page), nil
}

// ListOrganizations lists the organizations a user belongs to.
// Only admins may list the memberships of another user.
func (s *UserService) ListOrganizations(ctx context.Context, userID, actorID uuid.UUID, page store.Page) (*Listing[*models.Organization], error) {
	actor, err := s.gate.Authorize(ctx, actorID, models.AllRoles...)
	if err != nil {
		return nil, err
	}

	if actor.Role != models.RoleAdmin && actor.ID != userID {
		return nil, fmt.Errorf("%w: organizations of user %s", ErrAccessDenied, userID)
	}

	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, translate("get user", err)
	}

	orgs, total, err := s.orgs.ListByMember(ctx, userID, page)
	if err != nil {
		return nil, translate("list organizations", err)
	}

	return newListing(orgs, total, page), nil
}
