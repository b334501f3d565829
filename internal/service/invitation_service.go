package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/membership/internal/auth"
	"github.com/wolfeidau/membership/internal/models"
	"github.com/wolfeidau/membership/internal/notify"
	"github.com/wolfeidau/membership/internal/store"
	"github.com/wolfeidau/membership/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InvitationService runs the invitation lifecycle.
//
// An invitation is created PENDING and moves exactly once to ACCEPTED,
// REJECTED or EXPIRED, or is deleted while still PENDING. Acceptance grants
// membership of the organization in the same store transaction.
type InvitationService struct {
	gate        *auth.Gate
	users       store.UserStore
	orgs        store.OrganizationStore
	invitations store.InvitationStore
	opts        options
}

// NewInvitationService creates an invitation service.
func NewInvitationService(stores Stores, gate *auth.Gate, opts ...Option) *InvitationService {
	return &InvitationService{
		gate:        gate,
		users:       stores.Users,
		orgs:        stores.Organizations,
		invitations: stores.Invitations,
		opts:        newOptions(opts),
	}
}

// SweepResult summarizes one expiry sweep.
type SweepResult struct {
	Expired int `json:"expired"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Send invites a user to an organization and notifies them.
// Admins may invite to any organization, managers only to their own.
func (s *InvitationService) Send(ctx context.Context, actorID, userID, orgID uuid.UUID, message *string) (*models.Invitation, error) {
	actor, err := s.gate.Authorize(ctx, actorID, models.RoleAdmin, models.RoleManager)
	if err != nil {
		return nil, err
	}

	if actor.Role == models.RoleManager && !actor.IsMemberOf(orgID) {
		return nil, fmt.Errorf("%w: manager %s is not a member of organization %s", ErrAccessDenied, actor.ID, orgID)
	}

	invitee, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, translate("get user", err)
	}

	org, err := s.orgs.Get(ctx, orgID)
	if err != nil {
		return nil, translate("get organization", err)
	}

	if invitee.IsMemberOf(orgID) {
		return nil, fmt.Errorf("%w: user %s already belongs to organization %s", ErrAlreadyMember, userID, orgID)
	}

	latest, err := s.invitations.LatestForPair(ctx, userID, orgID)
	switch {
	case errors.Is(err, store.ErrInvitationNotFound):
	case err != nil:
		return nil, translate("get latest invitation", err)
	case latest.Status == models.InvitationStatusPending:
		return nil, fmt.Errorf("%w: invitation %s is still pending", ErrInvitationConflict, latest.ID)
	case latest.Status == models.InvitationStatusRejected:
		return nil, fmt.Errorf("%w: invitation %s was rejected", ErrInvitationConflict, latest.ID)
	}

	inv := &models.Invitation{
		ID:             uuid.Must(uuid.NewV7()),
		UserID:         userID,
		OrganizationID: orgID,
		Message:        message,
		Status:         models.InvitationStatusPending,
	}
	inv.Stamp(actor.ID, s.opts.clock.Now())

	if err := s.invitations.Create(ctx, inv); err != nil {
		return nil, translate("create invitation", err)
	}

	telemetry.GetMetrics().InvitationsCreatedTotal.Add(ctx, 1)

	log.Info().
		Str("invitation_id", inv.ID.String()).
		Str("user_id", userID.String()).
		Str("org_id", orgID.String()).
		Str("actor_id", actor.ID.String()).
		Msg("Invitation created")

	if err := s.opts.sender.Send(ctx, notify.NewNotification(inv, invitee, org)); err != nil {
		log.Warn().Err(err).
			Str("invitation_id", inv.ID.String()).
			Msg("Failed to send invitation notification")
	}

	return inv, nil
}

// SetStatus accepts or rejects a PENDING invitation.
func (s *InvitationService) SetStatus(ctx context.Context, invitationID, actorID uuid.UUID, target models.InvitationStatus) (*models.Invitation, error) {
	actor, err := s.gate.Authorize(ctx, actorID, models.AllRoles...)
	if err != nil {
		return nil, err
	}

	if target != models.InvitationStatusAccepted && target != models.InvitationStatusRejected {
		return nil, fmt.Errorf("%w: cannot set invitation status to %q", ErrInvalidTransition, target)
	}

	inv, err := s.invitations.Get(ctx, invitationID)
	if err != nil {
		return nil, translate("get invitation", err)
	}

	if !inv.Status.CanTransition(target) {
		return nil, fmt.Errorf("%w: invitation %s is %s", ErrInvalidTransition, inv.ID, inv.Status)
	}

	// Any active user may answer an invitation; only the mismatch is recorded.
	if actor.ID != inv.UserID {
		log.Debug().
			Str("invitation_id", inv.ID.String()).
			Str("actor_id", actor.ID.String()).
			Str("user_id", inv.UserID.String()).
			Msg("Invitation answered by someone other than the invitee")
	}

	updated := inv.Clone()
	updated.Status = target
	updated.Touch(actor.ID, s.opts.clock.Now())

	if err := s.invitations.Transition(ctx, updated, models.InvitationStatusPending); err != nil {
		return nil, translate("update invitation", err)
	}

	telemetry.GetMetrics().InvitationsTransitionedTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", string(target))))

	log.Info().
		Str("invitation_id", inv.ID.String()).
		Str("status", string(target)).
		Str("actor_id", actor.ID.String()).
		Msg("Invitation answered")

	return updated, nil
}

// Delete removes a PENDING invitation. Only admins and the invitation's creator may delete it.
func (s *InvitationService) Delete(ctx context.Context, invitationID, actorID uuid.UUID) error {
	actor, err := s.gate.Authorize(ctx, actorID, models.AllRoles...)
	if err != nil {
		return err
	}

	inv, err := s.invitations.Get(ctx, invitationID)
	if err != nil {
		return translate("get invitation", err)
	}

	if actor.Role != models.RoleAdmin && inv.CreatedBy != actor.ID {
		return fmt.Errorf("%w: only an admin or the creator may delete invitation %s", ErrAccessDenied, inv.ID)
	}

	if inv.Status != models.InvitationStatusPending {
		return fmt.Errorf("%w: invitation %s is %s", ErrInvalidTransition, inv.ID, inv.Status)
	}

	if err := s.invitations.Delete(ctx, invitationID, models.InvitationStatusPending); err != nil {
		return translate("delete invitation", err)
	}

	telemetry.GetMetrics().InvitationsDeletedTotal.Add(ctx, 1)

	log.Info().
		Str("invitation_id", inv.ID.String()).
		Str("actor_id", actor.ID.String()).
		Msg("Invitation deleted")

	return nil
}

// Get returns an invitation by id.
func (s *InvitationService) Get(ctx context.Context, invitationID uuid.UUID) (*models.Invitation, error) {
	inv, err := s.invitations.Get(ctx, invitationID)
	if err != nil {
		return nil, translate("get invitation", err)
	}
	return inv, nil
}

// ListForUser lists the invitations addressed to a user. Users may only list their own.
func (s *InvitationService) ListForUser(ctx context.Context, userID, actorID uuid.UUID, page store.Page) (*Listing[*models.Invitation], error) {
	actor, err := s.gate.Authorize(ctx, actorID, models.AllRoles...)
	if err != nil {
		return nil, err
	}

	if actor.ID != userID {
		return nil, fmt.Errorf("%w: invitations of user %s", ErrAccessDenied, userID)
	}

	invitations, total, err := s.invitations.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, translate("list invitations", err)
	}

	return newListing(invitations, total, page), nil
}

// ListForOrganization lists the invitations of an organization.
// Managers may only list organizations they belong to.
func (s *InvitationService) ListForOrganization(ctx context.Context, orgID, actorID uuid.UUID, page store.Page) (*Listing[*models.Invitation], error) {
	actor, err := s.gate.Authorize(ctx, actorID, models.RoleAdmin, models.RoleManager)
	if err != nil {
		return nil, err
	}

	if _, err := s.orgs.Get(ctx, orgID); err != nil {
		return nil, translate("get organization", err)
	}

	if actor.Role != models.RoleAdmin && !actor.IsMemberOf(orgID) {
		return nil, fmt.Errorf("%w: manager %s is not a member of organization %s", ErrAccessDenied, actor.ID, orgID)
	}

	invitations, total, err := s.invitations.ListByOrganization(ctx, orgID, page)
	if err != nil {
		return nil, translate("list invitations", err)
	}

	return newListing(invitations, total, page), nil
}

// ExpireStale moves every PENDING invitation older than the retention window
// to EXPIRED on behalf of the system actor. Each invitation is written on its
// own; a failure is logged and the sweep moves on. Invitations answered
// concurrently are skipped.
func (s *InvitationService) ExpireStale(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	started := time.Now()
	now := s.opts.clock.Now()
	cutoff := now.Add(-s.opts.retention)

	stale, err := s.invitations.ListStale(ctx, models.InvitationStatusPending, cutoff)
	if err != nil {
		return result, fmt.Errorf("failed to list stale invitations: %w", err)
	}

	metrics := telemetry.GetMetrics()

	for _, inv := range stale {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		expired := inv.Clone()
		expired.Status = models.InvitationStatusExpired
		expired.Touch(models.SystemActorID, now)

		err := s.invitations.Transition(ctx, expired, models.InvitationStatusPending)
		switch {
		case err == nil:
			result.Expired++
		case errors.Is(err, store.ErrInvitationStatusChanged), errors.Is(err, store.ErrInvitationNotFound):
			result.Skipped++
		default:
			result.Failed++
			metrics.SweepFailuresTotal.Add(ctx, 1)
			log.Error().Err(err).
				Str("invitation_id", inv.ID.String()).
				Msg("Failed to expire invitation")
		}
	}

	metrics.InvitationsExpiredTotal.Add(ctx, int64(result.Expired))
	metrics.SweepDuration.Record(ctx, float64(time.Since(started).Milliseconds()))

	log.Info().
		Time("cutoff", cutoff).
		Int("expired", result.Expired).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("Expired stale invitations")

	return result, nil
}
