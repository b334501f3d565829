package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/membership/internal/auth"
	"github.com/wolfeidau/membership/internal/models"
	"github.com/wolfeidau/membership/internal/store"
)

func TestInvitationService_Send(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	admin := f.seedUser(t, models.RoleAdmin, models.UserStatusActive)
	manager := f.seedUser(t, models.RoleManager, models.UserStatusActive)
	plain := f.seedUser(t, models.RoleUser, models.UserStatusActive)
	org := f.seedOrganization(t, manager)
	other := f.seedOrganization(t, admin)

	t.Run("manager invites to own organization", func(t *testing.T) {
		invitee := f.seedUser(t, models.RoleUser, models.UserStatusActive)

		inv, err := f.invitations.Send(ctx, manager.ID, invitee.ID, org.ID, ptr("Join the team"))
		require.NoError(t, err)
		require.Equal(t, models.InvitationStatusPending, inv.Status)
		require.Equal(t, manager.ID, inv.CreatedBy)
		require.Equal(t, manager.ID, inv.UpdatedBy)
		require.Equal(t, baseTime, inv.CreatedAt)

		stored, err := f.invitations.Get(ctx, inv.ID)
		require.NoError(t, err)
		require.Equal(t, "Join the team", *stored.Message)

		require.Equal(t, 1, f.sender.count())
		require.Equal(t, invitee.Email, f.sender.sent[0].RecipientEmail)
		require.Equal(t, "You have been invited to join "+org.Name+"!", f.sender.sent[0].Subject)
	})

	t.Run("manager outside organization", func(t *testing.T) {
		invitee := f.seedUser(t, models.RoleUser, models.UserStatusActive)

		_, err := f.invitations.Send(ctx, manager.ID, invitee.ID, other.ID, nil)
		require.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("manager naming an unknown organization", func(t *testing.T) {
		_, err := f.invitations.Send(ctx, manager.ID, uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7()), nil)
		require.ErrorIs(t, err, ErrAccessDenied)
		require.NotErrorIs(t, err, ErrNotFound)
	})

	t.Run("admin invites anywhere", func(t *testing.T) {
		invitee := f.seedUser(t, models.RoleUser, models.UserStatusActive)

		_, err := f.invitations.Send(ctx, admin.ID, invitee.ID, org.ID, nil)
		require.NoError(t, err)
	})

	t.Run("user role may not invite", func(t *testing.T) {
		invitee := f.seedUser(t, models.RoleUser, models.UserStatusActive)

		_, err := f.invitations.Send(ctx, plain.ID, invitee.ID, org.ID, nil)
		require.ErrorIs(t, err, auth.ErrInsufficientRole)
	})

	t.Run("anonymous", func(t *testing.T) {
		_, err := f.invitations.Send(ctx, uuid.Nil, plain.ID, org.ID, nil)
		require.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("missing invitee", func(t *testing.T) {
		_, err := f.invitations.Send(ctx, admin.ID, uuid.Must(uuid.NewV7()), org.ID, nil)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing organization", func(t *testing.T) {
		_, err := f.invitations.Send(ctx, admin.ID, plain.ID, uuid.Must(uuid.NewV7()), nil)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("invitee already a member", func(t *testing.T) {
		_, err := f.invitations.Send(ctx, admin.ID, manager.ID, org.ID, nil)
		require.ErrorIs(t, err, ErrAlreadyMember)
	})

	t.Run("notification failure does not fail the invitation", func(t *testing.T) {
		invitee := f.seedUser(t, models.RoleUser, models.UserStatusActive)
		f.sender.fail = true
		defer func() { f.sender.fail = false }()

		inv, err := f.invitations.Send(ctx, admin.ID, invitee.ID, org.ID, nil)
		require.NoError(t, err)

		_, err = f.invitations.Get(ctx, inv.ID)
		require.NoError(t, err)
	})
}

func TestInvitationService_SendConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	admin := f.seedUser(t, models.RoleAdmin, models.UserStatusActive)
	org := f.seedOrganization(t, admin)

	t.Run("second pending invitation", func(t *testing.T) {
		invitee := f.seedUser(t, models.RoleUser, models.UserStatusActive)

		_, err := f.invitations.Send(ctx, admin.ID, invitee.ID, org.ID, nil)
		require.NoError(t, err)

		_, err = f.invitations.Send(ctx, admin.ID, invitee.ID, org.ID, nil)
		require.ErrorIs(t, err, ErrInvitationConflict)
	})

	t.Run("re-invite after rejection", func(t *testing.T) {
		invitee := f.seedUser(t, models.RoleUser, models.UserStatusActive)

		inv, err := f.invitations.Send(ctx, admin.ID, invitee.ID, org.ID, nil)
		require.NoError(t, err)
		_, err = f.invitations.SetStatus(ctx, inv.ID, invitee.ID, models.InvitationStatusRejected)
		require.NoError(t, err)

		_, err = f.invitations.Send(ctx, admin.ID, invitee.ID, org.ID, nil)
		require.ErrorIs(t, err, ErrInvitationConflict)

		// Rejection blocks indefinitely.
		f.clock.Advance(365 * 24 * time.Hour)
		_, err = f.invitations.Send(ctx, admin.ID, invitee.ID, org.ID, nil)
		require.ErrorIs(t, err, ErrInvitationConflict)
	})

	t.Run("re-invite after expiry", func(t *testing.T) {
		invitee := f.seedUser(t, models.RoleUser, models.UserStatusActive)

		_, err := f.invitations.Send(ctx, admin.ID, invitee.ID, org.ID, nil)
		require.NoError(t, err)

		f.clock.Advance(DefaultRetention + time.Hour)
		_, err = f.invitations.ExpireStale(ctx)
		require.NoError(t, err)

		_, err = f.invitations.Send(ctx, admin.ID, invitee.ID, org.ID, nil)
		require.NoError(t, err)
	})

	t.Run("re-invite after acceptance", func(t *testing.T) {
		invitee := f.seedUser(t, models.RoleUser, models.UserStatusActive)

		inv, err := f.invitations.Send(ctx, admin.ID, invitee.ID, org.ID, nil)
		require.NoError(t, err)
		_, err = f.invitations.SetStatus(ctx, inv.ID, invitee.ID, models.InvitationStatusAccepted)
		require.NoError(t, err)

		_, err = f.invitations.Send(ctx, admin.ID, invitee.ID, org.ID, nil)
		require.ErrorIs(t, err, ErrAlreadyMember)
	})

	t.Run("concurrent sends for one pair", func(t *testing.T) {
		invitee := f.seedUser(t, models.RoleUser, models.UserStatusActive)

		const attempts = 16
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
			conflicts int
		)

		for range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.invitations.Send(ctx, admin.ID, invitee.ID, org.ID, nil)

				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					succeeded++
				case errors.Is(err, ErrInvitationConflict):
					conflicts++
				}
			}()
		}
		wg.Wait()

		require.Equal(t, 1, succeeded)
		require.Equal(t, attempts-1, conflicts)

		_, total, err := f.stores.Invitations.ListByUser(ctx, invitee.ID, store.Page{})
		require.NoError(t, err)
		require.Equal(t, 1, total)
	})
}

func TestInvitationService_SetStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	admin := f.seedUser(t, models.RoleAdmin, models.UserStatusActive)
	org := f.seedOrganization(t, admin)

	send := func(t *testing.T) (*models.User, *models.Invitation) {
		t.Helper()
		invitee := f.seedUser(t, models.RoleUser, models.UserStatusActive)
		inv, err := f.invitations.Send(ctx, admin.ID, invitee.ID, org.ID, nil)
		require.NoError(t, err)
		return invitee, inv
	}

	t.Run("accept grants membership", func(t *testing.T) {
		invitee, inv := send(t)
		f.clock.Advance(time.Minute)

		updated, err := f.invitations.SetStatus(ctx, inv.ID, invitee.ID, models.InvitationStatusAccepted)
		require.NoError(t, err)
		require.Equal(t, models.InvitationStatusAccepted, updated.Status)
		require.Equal(t, invitee.ID, updated.UpdatedBy)
		require.Equal(t, f.clock.Now(), updated.UpdatedAt)

		require.True(t, f.reloadUser(t, invitee.ID).IsMemberOf(org.ID))

		_, err = f.invitations.SetStatus(ctx, inv.ID, invitee.ID, models.InvitationStatusAccepted)
		require.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("reject leaves membership untouched", func(t *testing.T) {
		invitee, inv := send(t)

		updated, err := f.invitations.SetStatus(ctx, inv.ID, invitee.ID, models.InvitationStatusRejected)
		require.NoError(t, err)
		require.Equal(t, models.InvitationStatusRejected, updated.Status)
		require.False(t, f.reloadUser(t, invitee.ID).IsMemberOf(org.ID))
	})

	t.Run("someone other than the invitee may answer", func(t *testing.T) {
		_, inv := send(t)

		_, err := f.invitations.SetStatus(ctx, inv.ID, admin.ID, models.InvitationStatusRejected)
		require.NoError(t, err)
	})

	t.Run("only accepted or rejected may be requested", func(t *testing.T) {
		invitee, inv := send(t)

		for _, target := range []models.InvitationStatus{models.InvitationStatusPending, models.InvitationStatusExpired, "MAYBE"} {
			_, err := f.invitations.SetStatus(ctx, inv.ID, invitee.ID, target)
			require.ErrorIs(t, err, ErrInvalidTransition, target)
		}

		stored, err := f.invitations.Get(ctx, inv.ID)
		require.NoError(t, err)
		require.Equal(t, models.InvitationStatusPending, stored.Status)
	})

	t.Run("terminal states never move", func(t *testing.T) {
		terminal := []models.InvitationStatus{
			models.InvitationStatusAccepted,
			models.InvitationStatusRejected,
			models.InvitationStatusExpired,
		}
		targets := []models.InvitationStatus{
			models.InvitationStatusAccepted,
			models.InvitationStatusRejected,
			models.InvitationStatusPending,
			models.InvitationStatusExpired,
		}

		for _, current := range terminal {
			invitee, inv := send(t)

			moved := inv.Clone()
			moved.Status = current
			require.NoError(t, f.stores.Invitations.Transition(ctx, moved, models.InvitationStatusPending))

			for _, target := range targets {
				t.Run(string(current)+" to "+string(target), func(t *testing.T) {
					_, err := f.invitations.SetStatus(ctx, inv.ID, invitee.ID, target)
					require.ErrorIs(t, err, ErrInvalidTransition)
				})
			}
		}
	})

	t.Run("unknown invitation", func(t *testing.T) {
		_, err := f.invitations.SetStatus(ctx, uuid.Must(uuid.NewV7()), admin.ID, models.InvitationStatusAccepted)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("inactive actor", func(t *testing.T) {
		_, inv := send(t)
		pending := f.seedUser(t, models.RoleUser, models.UserStatusPending)

		_, err := f.invitations.SetStatus(ctx, inv.ID, pending.ID, models.InvitationStatusAccepted)
		require.ErrorIs(t, err, auth.ErrActorInactive)
	})
}

func TestInvitationService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	admin := f.seedUser(t, models.RoleAdmin, models.UserStatusActive)
	manager := f.seedUser(t, models.RoleManager, models.UserStatusActive)
	otherManager := f.seedUser(t, models.RoleManager, models.UserStatusActive)
	org := f.seedOrganization(t, manager)

	send := func(t *testing.T) (*models.User, *models.Invitation) {
		t.Helper()
		invitee := f.seedUser(t, models.RoleUser, models.UserStatusActive)
		inv, err := f.invitations.Send(ctx, manager.ID, invitee.ID, org.ID, nil)
		require.NoError(t, err)
		return invitee, inv
	}

	t.Run("creator deletes", func(t *testing.T) {
		_, inv := send(t)

		require.NoError(t, f.invitations.Delete(ctx, inv.ID, manager.ID))

		_, err := f.invitations.Get(ctx, inv.ID)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("admin deletes", func(t *testing.T) {
		_, inv := send(t)
		require.NoError(t, f.invitations.Delete(ctx, inv.ID, admin.ID))
	})

	t.Run("invitee may not delete", func(t *testing.T) {
		invitee, inv := send(t)
		require.ErrorIs(t, f.invitations.Delete(ctx, inv.ID, invitee.ID), ErrAccessDenied)
	})

	t.Run("another manager may not delete", func(t *testing.T) {
		_, inv := send(t)
		require.ErrorIs(t, f.invitations.Delete(ctx, inv.ID, otherManager.ID), ErrAccessDenied)
	})

	t.Run("only pending invitations", func(t *testing.T) {
		invitee, inv := send(t)
		_, err := f.invitations.SetStatus(ctx, inv.ID, invitee.ID, models.InvitationStatusRejected)
		require.NoError(t, err)

		require.ErrorIs(t, f.invitations.Delete(ctx, inv.ID, manager.ID), ErrInvalidTransition)
		require.ErrorIs(t, f.invitations.Delete(ctx, inv.ID, admin.ID), ErrInvalidTransition)
	})

	t.Run("unknown invitation", func(t *testing.T) {
		require.ErrorIs(t, f.invitations.Delete(ctx, uuid.Must(uuid.NewV7()), admin.ID), ErrNotFound)
	})
}

func TestInvitationService_Listing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	admin := f.seedUser(t, models.RoleAdmin, models.UserStatusActive)
	manager := f.seedUser(t, models.RoleManager, models.UserStatusActive)
	outsider := f.seedUser(t, models.RoleManager, models.UserStatusActive)
	invitee := f.seedUser(t, models.RoleUser, models.UserStatusActive)

	orgA := f.seedOrganization(t, manager)
	orgB := f.seedOrganization(t, admin)

	_, err := f.invitations.Send(ctx, manager.ID, invitee.ID, orgA.ID, nil)
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	latest, err := f.invitations.Send(ctx, admin.ID, invitee.ID, orgB.ID, nil)
	require.NoError(t, err)

	t.Run("invitee lists own", func(t *testing.T) {
		listing, err := f.invitations.ListForUser(ctx, invitee.ID, invitee.ID, store.Page{})
		require.NoError(t, err)
		require.Equal(t, 2, listing.Total)
		require.Equal(t, latest.ID, listing.Items[0].ID)
		require.Equal(t, store.DefaultPageLimit, listing.Limit)
	})

	t.Run("others may not list a user's invitations", func(t *testing.T) {
		_, err := f.invitations.ListForUser(ctx, invitee.ID, admin.ID, store.Page{})
		require.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("manager lists own organization", func(t *testing.T) {
		listing, err := f.invitations.ListForOrganization(ctx, orgA.ID, manager.ID, store.Page{Limit: 500})
		require.NoError(t, err)
		require.Equal(t, 1, listing.Total)
		require.Equal(t, store.MaxPageLimit, listing.Limit)
	})

	t.Run("manager outside organization", func(t *testing.T) {
		_, err := f.invitations.ListForOrganization(ctx, orgA.ID, outsider.ID, store.Page{})
		require.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("admin lists any organization", func(t *testing.T) {
		listing, err := f.invitations.ListForOrganization(ctx, orgA.ID, admin.ID, store.Page{})
		require.NoError(t, err)
		require.Equal(t, 1, listing.Total)
	})

	t.Run("user role may not list organizations", func(t *testing.T) {
		_, err := f.invitations.ListForOrganization(ctx, orgA.ID, invitee.ID, store.Page{})
		require.ErrorIs(t, err, auth.ErrInsufficientRole)
	})

	t.Run("unknown organization", func(t *testing.T) {
		_, err := f.invitations.ListForOrganization(ctx, uuid.Must(uuid.NewV7()), admin.ID, store.Page{})
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestInvitationService_ExpireStale(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	admin := f.seedUser(t, models.RoleAdmin, models.UserStatusActive)
	org := f.seedOrganization(t, admin)

	send := func(t *testing.T) *models.Invitation {
		t.Helper()
		invitee := f.seedUser(t, models.RoleUser, models.UserStatusActive)
		inv, err := f.invitations.Send(ctx, admin.ID, invitee.ID, org.ID, nil)
		require.NoError(t, err)
		return inv
	}

	old := send(t)
	answered := send(t)
	_, err := f.invitations.SetStatus(ctx, answered.ID, admin.ID, models.InvitationStatusRejected)
	require.NoError(t, err)

	f.clock.Advance(3 * 24 * time.Hour)
	recent := send(t)

	f.clock.Advance(4*24*time.Hour + time.Minute)

	result, err := f.invitations.ExpireStale(ctx)
	require.NoError(t, err)
	require.Equal(t, SweepResult{Expired: 1}, result)

	expired, err := f.invitations.Get(ctx, old.ID)
	require.NoError(t, err)
	require.Equal(t, models.InvitationStatusExpired, expired.Status)
	require.Equal(t, models.SystemActorID, expired.UpdatedBy)
	require.Equal(t, f.clock.Now(), expired.UpdatedAt)

	untouched, err := f.invitations.Get(ctx, recent.ID)
	require.NoError(t, err)
	require.Equal(t, models.InvitationStatusPending, untouched.Status)

	rejected, err := f.invitations.Get(ctx, answered.ID)
	require.NoError(t, err)
	require.Equal(t, models.InvitationStatusRejected, rejected.Status)

	entries, _, err := f.auditLog.ListByEntity(ctx, "Invitation", old.ID, store.Page{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, models.AuditActionUpdate, entries[0].Action)
	require.Equal(t, models.SystemActorID, entries[0].ActorID)

	t.Run("second run is a no-op", func(t *testing.T) {
		before := f.auditLog.Len()

		result, err := f.invitations.ExpireStale(ctx)
		require.NoError(t, err)
		require.Equal(t, SweepResult{}, result)
		require.Equal(t, before, f.auditLog.Len())
	})

	t.Run("custom retention", func(t *testing.T) {
		short := NewInvitationService(f.stores, auth.NewGate(f.stores.Users), WithClock(f.clock), WithRetention(time.Hour))

		result, err := short.ExpireStale(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, result.Expired)

		got, err := f.invitations.Get(ctx, recent.ID)
		require.NoError(t, err)
		require.Equal(t, models.InvitationStatusExpired, got.Status)
	})
}

// flakyInvitationStore fails Transition for chosen invitations.
type flakyInvitationStore struct {
	store.InvitationStore
	failures map[uuid.UUID]error
}

func (s *flakyInvitationStore) Transition(ctx context.Context, inv *models.Invitation, from models.InvitationStatus) error {
	if err, ok := s.failures[inv.ID]; ok {
		return err
	}
	return s.InvitationStore.Transition(ctx, inv, from)
}

func TestInvitationService_ExpireStalePartialFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	admin := f.seedUser(t, models.RoleAdmin, models.UserStatusActive)
	org := f.seedOrganization(t, admin)

	var stale []*models.Invitation
	for range 4 {
		invitee := f.seedUser(t, models.RoleUser, models.UserStatusActive)
		inv, err := f.invitations.Send(ctx, admin.ID, invitee.ID, org.ID, nil)
		require.NoError(t, err)
		stale = append(stale, inv)
	}

	broken, raced := stale[1], stale[2]
	flaky := &flakyInvitationStore{
		InvitationStore: f.stores.Invitations,
		failures: map[uuid.UUID]error{
			broken.ID: errors.New("connection reset by peer"),
			raced.ID:  store.ErrInvitationStatusChanged,
		},
	}
	stores := f.stores
	stores.Invitations = flaky
	svc := NewInvitationService(stores, auth.NewGate(stores.Users), WithClock(f.clock))

	f.clock.Advance(8 * 24 * time.Hour)

	result, err := svc.ExpireStale(ctx)
	require.NoError(t, err)
	require.Equal(t, SweepResult{Expired: 2, Skipped: 1, Failed: 1}, result)

	tests := []struct {
		name       string
		inv        *models.Invitation
		wantStatus models.InvitationStatus
		wantAudit  int
	}{
		{name: "first expired", inv: stale[0], wantStatus: models.InvitationStatusExpired, wantAudit: 2},
		{name: "write failed", inv: broken, wantStatus: models.InvitationStatusPending, wantAudit: 1},
		{name: "answered concurrently", inv: raced, wantStatus: models.InvitationStatusPending, wantAudit: 1},
		{name: "last expired", inv: stale[3], wantStatus: models.InvitationStatusExpired, wantAudit: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.invitations.Get(ctx, tt.inv.ID)
			require.NoError(t, err)
			require.Equal(t, tt.wantStatus, got.Status)

			entries, _, err := f.auditLog.ListByEntity(ctx, "Invitation", tt.inv.ID, store.Page{})
			require.NoError(t, err)
			require.Len(t, entries, tt.wantAudit)
			if tt.wantStatus == models.InvitationStatusExpired {
				require.Equal(t, models.AuditActionUpdate, entries[0].Action)
				require.Equal(t, models.SystemActorID, entries[0].ActorID)
			}
		})
	}

	t.Run("next run retries the failed invitation", func(t *testing.T) {
		delete(flaky.failures, broken.ID)

		result, err := svc.ExpireStale(ctx)
		require.NoError(t, err)
		require.Equal(t, SweepResult{Expired: 1, Skipped: 1}, result)

		got, err := f.invitations.Get(ctx, broken.ID)
		require.NoError(t, err)
		require.Equal(t, models.InvitationStatusExpired, got.Status)
	})
}
