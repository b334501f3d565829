package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/membership/internal/models"
	"github.com/wolfeidau/membership/internal/store/memory"
)

type brokenDirectory struct{}

func (brokenDirectory) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return nil, errors.New("connection refused")
}

func seedActor(t *testing.T, users *memory.UserStore, status models.UserStatus, role models.Role) *models.User {
	t.Helper()

	u := &models.User{
		ID:     uuid.Must(uuid.NewV7()),
		Email:  uuid.NewString() + "@example.com",
		Status: status,
		Role:   role,
	}
	u.SetFullName("Actor")
	u.Stamp(models.SystemActorID, time.Now())
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestGate_Authorize(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserStore()
	gate := NewGate(users)

	t.Run("anonymous", func(t *testing.T) {
		_, err := gate.Authorize(ctx, uuid.Nil, models.AllRoles...)
		require.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("unknown actor", func(t *testing.T) {
		_, err := gate.Authorize(ctx, uuid.Must(uuid.NewV7()), models.AllRoles...)
		require.ErrorIs(t, err, ErrActorNotFound)
	})

	t.Run("directory failure is not a denial", func(t *testing.T) {
		_, err := NewGate(brokenDirectory{}).Authorize(ctx, uuid.Must(uuid.NewV7()), models.AllRoles...)
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrActorNotFound)
		require.NotErrorIs(t, err, ErrUnauthenticated)
	})

	inactive := []models.UserStatus{
		models.UserStatusPending,
		models.UserStatusDeactivated,
		models.UserStatusDeleted,
	}

	for _, status := range inactive {
		for _, role := range models.AllRoles {
			actor := seedActor(t, users, status, role)

			t.Run("inactive "+string(status)+" "+string(role), func(t *testing.T) {
				_, err := gate.Authorize(ctx, actor.ID, models.AllRoles...)
				require.ErrorIs(t, err, ErrActorInactive)
			})
		}
	}

	roleSets := [][]models.Role{
		{models.RoleAdmin},
		{models.RoleAdmin, models.RoleManager},
		{models.RoleManager},
		{models.RoleUser},
		models.AllRoles,
	}

	for _, role := range models.AllRoles {
		actor := seedActor(t, users, models.UserStatusActive, role)

		for _, required := range roleSets {
			permitted := false
			for _, r := range required {
				if r == role {
					permitted = true
				}
			}

			t.Run(string(role)+" against "+joinRoles(required), func(t *testing.T) {
				got, err := gate.Authorize(ctx, actor.ID, required...)
				if !permitted {
					require.ErrorIs(t, err, ErrInsufficientRole)
					require.Nil(t, got)
					return
				}
				require.NoError(t, err)
				require.Equal(t, actor.ID, got.ID)
				require.Equal(t, role, got.Role)
			})
		}
	}

	t.Run("no roles permits nobody", func(t *testing.T) {
		admin := seedActor(t, users, models.UserStatusActive, models.RoleAdmin)
		_, err := gate.Authorize(ctx, admin.ID)
		require.ErrorIs(t, err, ErrInsufficientRole)
	})
}

func joinRoles(roles []models.Role) string {
	s := ""
	for i, r := range roles {
		if i > 0 {
			s += "|"
		}
		s += string(r)
	}
	return s
}
