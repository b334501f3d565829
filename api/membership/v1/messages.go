package membershipv1

import (
	"github.com/google/uuid"
	"github.com/wolfeidau/membership/internal/models"
	"github.com/wolfeidau/membership/internal/store"
)

// List is one page of a listing.
type List[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Empty is the response of operations that return nothing.
type Empty struct{}

// Invitations

type SendInvitationRequest struct {
	UserID         uuid.UUID `json:"user_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Message        *string   `json:"message,omitempty"`
}

type SetInvitationStatusRequest struct {
	InvitationID uuid.UUID               `json:"invitation_id"`
	Status       models.InvitationStatus `json:"status"`
}

type InvitationRequest struct {
	InvitationID uuid.UUID `json:"invitation_id"`
}

type InvitationResponse struct {
	Invitation *models.Invitation `json:"invitation"`
}

type ListInvitationsForUserRequest struct {
	UserID uuid.UUID  `json:"user_id"`
	Page   store.Page `json:"page"`
}

type ListInvitationsForOrganizationRequest struct {
	OrganizationID uuid.UUID  `json:"organization_id"`
	Page           store.Page `json:"page"`
}

// Users

type CreateUserRequest struct {
	Email    string      `json:"email"`
	FullName string      `json:"full_name"`
	Role     models.Role `json:"role,omitempty"`
}

type UpdateUserRequest struct {
	UserID   uuid.UUID `json:"user_id"`
	FullName string    `json:"full_name"`
}

type UserRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

type GetUserByEmailRequest struct {
	Email string `json:"email"`
}

type UserResponse struct {
	User *models.User `json:"user"`
}

type ListUsersRequest struct {
	Page store.Page `json:"page"`
}

type SearchUsersRequest struct {
	Name string     `json:"name"`
	Page store.Page `json:"page"`
}

type ListUserOrganizationsRequest struct {
	UserID uuid.UUID  `json:"user_id"`
	Page   store.Page `json:"page"`
}

// Organizations

type CreateOrganizationRequest struct {
	Name           string `json:"name"`
	RegistryNumber string `json:"registry_number"`
	ContactEmail   string `json:"contact_email"`
	CompanySize    int    `json:"company_size"`
	YearFounded    int    `json:"year_founded"`
}

type UpdateOrganizationRequest struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name"`
	ContactEmail   string    `json:"contact_email"`
	CompanySize    int       `json:"company_size"`
}

type OrganizationRequest struct {
	OrganizationID uuid.UUID `json:"organization_id"`
}

type GetOrganizationByRegistryNumberRequest struct {
	RegistryNumber string `json:"registry_number"`
}

type OrganizationResponse struct {
	Organization *models.Organization `json:"organization"`
}

type SearchOrganizationsRequest struct {
	Name        string     `json:"name"`
	YearFounded int        `json:"year_founded"`
	CompanySize int        `json:"company_size"`
	Page        store.Page `json:"page"`
}

type ListOrganizationUsersRequest struct {
	OrganizationID uuid.UUID  `json:"organization_id"`
	Page           store.Page `json:"page"`
}

// Audit

type ListAuditLogsRequest struct {
	EntityType string     `json:"entity_type"`
	EntityID   uuid.UUID  `json:"entity_id"`
	Page       store.Page `json:"page"`
}
