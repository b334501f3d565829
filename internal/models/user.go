package models

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Role is the authorization role held by a user.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleUser    Role = "USER"
)

// AllRoles lists every role, used by operations open to any active user.
var AllRoles = []Role{RoleAdmin, RoleManager, RoleUser}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return slices.Contains(AllRoles, r)
}

// UserStatus is the lifecycle status of a user.
type UserStatus string

const (
	UserStatusActive      UserStatus = "ACTIVE"
	UserStatusPending     UserStatus = "PENDING"
	UserStatusDeactivated UserStatus = "DEACTIVATED"
	UserStatusDeleted     UserStatus = "DELETED"
)

// Valid reports whether s is a known user status.
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusPending, UserStatusDeactivated, UserStatusDeleted:
		return true
	}
	return false
}

// User is an identity that can act on the platform and belong to organizations.
type User struct {
	ID             uuid.UUID  `json:"id"` // UUIDv7
	Email          string     `json:"email"`
	FullName       string     `json:"full_name"`
	NormalizedName string     `json:"normalized_name"`
	Status         UserStatus `json:"status"`
	Role           Role       `json:"role"`

	// OrganizationIDs is materialized by the store on every load.
	OrganizationIDs []uuid.UUID `json:"organization_ids"`

	Attribution
}

// SetFullName updates the display name and its normalized projection together.
func (u *User) SetFullName(name string) {
	u.FullName = name
	u.NormalizedName = NormalizeName(name)
}

// IsMemberOf reports whether the user belongs to the organization.
func (u *User) IsMemberOf(orgID uuid.UUID) bool {
	return slices.Contains(u.OrganizationIDs, orgID)
}

// Clone returns a deep copy of the user.
func (u *User) Clone() *User {
	c := *u
	c.OrganizationIDs = slices.Clone(u.OrganizationIDs)
	return &c
}

func (u *User) EntityType() string  { return "User" }
func (u *User) EntityID() uuid.UUID { return u.ID }

// String renders the snapshot stored in audit descriptions.
func (u *User) String() string {
	return fmt.Sprintf("User{id=%s, email=%s, fullName=%s, normalizedName=%s, status=%s, role=%s, createdBy=%s, updatedBy=%s}",
		u.ID, u.Email, u.FullName, u.NormalizedName, u.Status, u.Role, u.CreatedBy, u.UpdatedBy)
}
