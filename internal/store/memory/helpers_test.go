package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/membership/internal/models"
)

var baseTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func createUser(t *testing.T, db *DB, email string, at time.Time) *models.User {
	t.Helper()

	u := &models.User{
		ID:     uuid.Must(uuid.NewV7()),
		Email:  email,
		Status: models.UserStatusActive,
		Role:   models.RoleUser,
	}
	u.SetFullName(email)
	u.Stamp(models.SystemActorID, at)

	require.NoError(t, db.Users().Create(context.Background(), u))
	return u
}

func createOrganization(t *testing.T, db *DB, registry string, founderID uuid.UUID, at time.Time) *models.Organization {
	t.Helper()

	org := &models.Organization{
		ID:             uuid.Must(uuid.NewV7()),
		RegistryNumber: registry,
		ContactEmail:   "contact@" + registry + ".example",
		CompanySize:    10,
		YearFounded:    2001,
	}
	org.SetName("Org " + registry)
	org.Stamp(founderID, at)

	require.NoError(t, db.Organizations().Create(context.Background(), org, founderID))
	return org
}

func pendingInvitation(user *models.User, org *models.Organization, at time.Time) *models.Invitation {
	inv := &models.Invitation{
		ID:             uuid.Must(uuid.NewV7()),
		UserID:         user.ID,
		OrganizationID: org.ID,
		Status:         models.InvitationStatusPending,
	}
	inv.Stamp(models.SystemActorID, at)
	return inv
}
