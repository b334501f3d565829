package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Organization represents a tenant that users join through invitations.
// Members are owned by the user side of the relation and are listed through the store.
type Organization struct {
	ID             uuid.UUID `json:"id"` // UUIDv7
	Name           string    `json:"name"`
	NormalizedName string    `json:"normalized_name"`
	RegistryNumber string    `json:"registry_number"` // globally unique business key
	ContactEmail   string    `json:"contact_email"`
	CompanySize    int       `json:"company_size"`
	YearFounded    int       `json:"year_founded"`

	Attribution
}

// SetName updates the display name and its normalized projection together.
func (o *Organization) SetName(name string) {
	o.Name = name
	o.NormalizedName = NormalizeName(name)
}

func (o *Organization) EntityType() string  { return "Organization" }
func (o *Organization) EntityID() uuid.UUID { return o.ID }

func (o *Organization) String() string {
	return fmt.Sprintf("Organization{id=%s, name=%s, normalizedName=%s, registryNumber=%s, contactEmail=%s, companySize=%d, yearFounded=%d, createdBy=%s, updatedBy=%s}",
		o.ID, o.Name, o.NormalizedName, o.RegistryNumber, o.ContactEmail, o.CompanySize, o.YearFounded, o.CreatedBy, o.UpdatedBy)
}
