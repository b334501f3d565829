package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/membership/internal/models"
	"github.com/wolfeidau/membership/internal/store"
)

func TestMemoryOrganizationStore_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("founder becomes member", func(t *testing.T) {
		db := NewDB()
		founder := createUser(t, db, "founder@example.com", baseTime)
		org := createOrganization(t, db, "R-1", founder.ID, baseTime)

		got, err := db.Users().Get(ctx, founder.ID)
		require.NoError(t, err)
		require.True(t, got.IsMemberOf(org.ID))
	})

	t.Run("duplicate registry number", func(t *testing.T) {
		db := NewDB()
		createOrganization(t, db, "R-1", uuid.Nil, baseTime)

		dup := &models.Organization{ID: uuid.Must(uuid.NewV7()), RegistryNumber: "R-1"}
		err := db.Organizations().Create(ctx, dup, uuid.Nil)
		require.ErrorIs(t, err, store.ErrOrganizationRegistryExists)
	})

	t.Run("unknown founder", func(t *testing.T) {
		db := NewDB()
		org := &models.Organization{ID: uuid.Must(uuid.NewV7()), RegistryNumber: "R-2"}
		err := db.Organizations().Create(ctx, org, uuid.Must(uuid.NewV7()))
		require.ErrorIs(t, err, store.ErrUserNotFound)

		_, err = db.Organizations().Get(ctx, org.ID)
		require.ErrorIs(t, err, store.ErrOrganizationNotFound)
	})
}

func TestMemoryOrganizationStore_GetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	member := createUser(t, db, "member@example.com", baseTime)
	org := createOrganization(t, db, "R-1", member.ID, baseTime)
	inv := pendingInvitation(createUser(t, db, "invitee@example.com", baseTime), org, baseTime)
	require.NoError(t, db.Invitations().Create(ctx, inv))

	got, err := db.Organizations().GetByRegistryNumber(ctx, "R-1")
	require.NoError(t, err)
	require.Equal(t, org.ID, got.ID)

	_, err = db.Organizations().GetByRegistryNumber(ctx, "R-404")
	require.ErrorIs(t, err, store.ErrOrganizationNotFound)

	got.SetName("Renamed Org")
	got.CompanySize = 50
	require.NoError(t, db.Organizations().Update(ctx, got))

	updated, err := db.Organizations().Get(ctx, org.ID)
	require.NoError(t, err)
	require.Equal(t, "renamedorg", updated.NormalizedName)
	require.Equal(t, 50, updated.CompanySize)

	require.NoError(t, db.Organizations().Delete(ctx, org.ID))
	require.ErrorIs(t, db.Organizations().Delete(ctx, org.ID), store.ErrOrganizationNotFound)

	reloaded, err := db.Users().Get(ctx, member.ID)
	require.NoError(t, err)
	require.False(t, reloaded.IsMemberOf(org.ID))

	_, err = db.Invitations().Get(ctx, inv.ID)
	require.ErrorIs(t, err, store.ErrInvitationNotFound)
}

func TestMemoryOrganizationStore_Search(t *testing.T) {
	ctx := context.Background()
	db := NewDB()

	mk := func(name, registry string, year, size int, at time.Time) *models.Organization {
		org := &models.Organization{ID: uuid.Must(uuid.NewV7()), RegistryNumber: registry, YearFounded: year, CompanySize: size}
		org.SetName(name)
		org.Stamp(models.SystemActorID, at)
		require.NoError(t, db.Organizations().Create(ctx, org, uuid.Nil))
		return org
	}

	acme := mk("Acme Corp", "R-1", 1999, 10, baseTime)
	mk("Acme Labs", "R-2", 2010, 10, baseTime.Add(time.Minute))
	mk("Globex", "R-3", 1999, 10, baseTime.Add(2*time.Minute))

	orgs, total, err := db.Organizations().Search(ctx, store.OrganizationFilter{NameContains: "acme", YearFounded: 1999, CompanySize: 10}, store.Page{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, acme.ID, orgs[0].ID)

	_, total, err = db.Organizations().Search(ctx, store.OrganizationFilter{NameContains: "acme"}, store.Page{})
	require.NoError(t, err)
	require.Equal(t, 2, total)
}

func TestMemoryOrganizationStore_Membership(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	user := createUser(t, db, "user@example.com", baseTime)
	first := createOrganization(t, db, "R-1", uuid.Nil, baseTime)
	second := createOrganization(t, db, "R-2", uuid.Nil, baseTime)

	require.NoError(t, db.Organizations().AddMember(ctx, first.ID, user.ID))
	require.ErrorIs(t, db.Organizations().AddMember(ctx, first.ID, user.ID), store.ErrAlreadyMember)
	require.NoError(t, db.Organizations().AddMember(ctx, second.ID, user.ID))

	require.ErrorIs(t, db.Organizations().AddMember(ctx, uuid.Must(uuid.NewV7()), user.ID), store.ErrOrganizationNotFound)
	require.ErrorIs(t, db.Organizations().AddMember(ctx, first.ID, uuid.Must(uuid.NewV7())), store.ErrUserNotFound)

	orgs, total, err := db.Organizations().ListByMember(ctx, user.ID, store.Page{})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, orgs, 2)

	orgs, total, err = db.Organizations().ListByMember(ctx, user.ID, store.Page{Offset: 1, Limit: 5})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, orgs, 1)
}
