package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/membership/internal/models"
)

// Sentinel errors for user store operations
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserEmailExists = errors.New("user email already exists")

	// ErrUsersExist is returned by CreateFirst when the store already holds a user.
	ErrUsersExist = errors.New("users already exist")
)

// UserFilter narrows a user listing. Zero values match everything.
type UserFilter struct {
	// ExcludeDeleted drops users in the DELETED status.
	ExcludeDeleted bool

	// NameContains matches a substring of the normalized name.
	NameContains string

	// OrganizationID restricts the listing to members of an organization.
	OrganizationID uuid.UUID
}

// UserStore defines the interface for user storage operations.
// Returned users always carry their materialized OrganizationIDs.
type UserStore interface {
	// Create inserts a new user.
	// Returns ErrUserEmailExists if another user already has the same email.
	Create(ctx context.Context, user *models.User) error

	// CreateFirst inserts user only if the store holds no users yet. The check
	// and the insert are atomic with respect to every other user insert.
	// Returns ErrUsersExist otherwise.
	CreateFirst(ctx context.Context, user *models.User) error

	// Get retrieves a user by ID.
	// Returns ErrUserNotFound if the user doesn't exist.
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a user by email address.
	// Returns ErrUserNotFound if no user has the email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// Update persists the mutable fields of a user (name, status, role, attribution).
	// Memberships are not changed by Update.
	// Returns ErrUserNotFound if the user doesn't exist.
	Update(ctx context.Context, user *models.User) error

	// Count returns the number of users in any status.
	Count(ctx context.Context) (int, error)

	// List returns one page of users matching the filter ordered by creation time, plus the total match count.
	List(ctx context.Context, filter UserFilter, page Page) ([]*models.User, int, error)
}
