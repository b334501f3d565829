package server

import (
	"context"

	"github.com/google/uuid"
	membershipv1 "github.com/wolfeidau/membership/api/membership/v1"
	"github.com/wolfeidau/membership/internal/models"
)

func (s *Server) registerInvitations(rt *routes) {
	invitations := s.services.Invitations

	handle(rt, membershipv1.InvitationServiceSendProcedure,
		func(ctx context.Context, actorID uuid.UUID, req *membershipv1.SendInvitationRequest) (*membershipv1.InvitationResponse, error) {
			inv, err := invitations.Send(ctx, actorID, req.UserID, req.OrganizationID, req.Message)
			if err != nil {
				return nil, err
			}
			return &membershipv1.InvitationResponse{Invitation: inv}, nil
		})

	handle(rt, membershipv1.InvitationServiceSetStatusProcedure,
		func(ctx context.Context, actorID uuid.UUID, req *membershipv1.SetInvitationStatusRequest) (*membershipv1.InvitationResponse, error) {
			inv, err := invitations.SetStatus(ctx, req.InvitationID, actorID, req.Status)
			if err != nil {
				return nil, err
			}
			return &membershipv1.InvitationResponse{Invitation: inv}, nil
		})

	handle(rt, membershipv1.InvitationServiceDeleteProcedure,
		func(ctx context.Context, actorID uuid.UUID, req *membershipv1.InvitationRequest) (*membershipv1.Empty, error) {
			if err := invitations.Delete(ctx, req.InvitationID, actorID); err != nil {
				return nil, err
			}
			return &membershipv1.Empty{}, nil
		})

	handle(rt, membershipv1.InvitationServiceGetProcedure,
		func(ctx context.Context, actorID uuid.UUID, req *membershipv1.InvitationRequest) (*membershipv1.InvitationResponse, error) {
			if err := requireActor(actorID); err != nil {
				return nil, err
			}
			inv, err := invitations.Get(ctx, req.InvitationID)
			if err != nil {
				return nil, err
			}
			return &membershipv1.InvitationResponse{Invitation: inv}, nil
		})

	handle(rt, membershipv1.InvitationServiceListForUserProcedure,
		func(ctx context.Context, actorID uuid.UUID, req *membershipv1.ListInvitationsForUserRequest) (*membershipv1.List[*models.Invitation], error) {
			listing, err := invitations.ListForUser(ctx, req.UserID, actorID, req.Page)
			if err != nil {
				return nil, err
			}
			return toList(listing), nil
		})

	handle(rt, membershipv1.InvitationServiceListForOrganizationProcedure,
		func(ctx context.Context, actorID uuid.UUID, req *membershipv1.ListInvitationsForOrganizationRequest) (*membershipv1.List[*models.Invitation], error) {
			listing, err := invitations.ListForOrganization(ctx, req.OrganizationID, actorID, req.Page)
			if err != nil {
				return nil, err
			}
			return toList(listing), nil
		})
}
