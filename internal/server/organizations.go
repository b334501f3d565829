package server

import (
	"context"

	"github.com/google/uuid"
	membershipv1 "github.com/wolfeidau/membership/api/membership/v1"
	"github.com/wolfeidau/membership/internal/models"
	"github.com/wolfeidau/membership/internal/service"
)

func (s *Server) registerOrganizations(rt *routes) {
	orgs := s.services.Organizations

	orgResponse := func(org *models.Organization, err error) (*membershipv1.OrganizationResponse, error) {
		if err != nil {
			return nil, err
		}
		return &membershipv1.OrganizationResponse{Organization: org}, nil
	}

	handle(rt, membershipv1.OrganizationServiceCreateProcedure,
		func(ctx context.Context, actorID uuid.UUID, req *membershipv1.CreateOrganizationRequest) (*membershipv1.OrganizationResponse, error) {
			return orgResponse(orgs.Create(ctx, actorID, service.CreateOrganizationInput{
				Name:           req.Name,
				RegistryNumber: req.RegistryNumber,
				ContactEmail:   req.ContactEmail,
				CompanySize:    req.CompanySize,
				YearFounded:    req.YearFounded,
			}))
		})

	handle(rt, membershipv1.OrganizationServiceUpdateProcedure,
		func(ctx context.Context, actorID uuid.UUID, req *membershipv1.UpdateOrganizationRequest) (*membershipv1.OrganizationResponse, error) {
			return orgResponse(orgs.Update(ctx, req.OrganizationID, actorID, service.UpdateOrganizationInput{
				Name:         req.Name,
				ContactEmail: req.ContactEmail,
				CompanySize:  req.CompanySize,
			}))
		})

	handle(rt, membershipv1.OrganizationServiceDeleteProcedure,
		func(ctx context.Context, actorID uuid.UUID, req *membershipv1.OrganizationRequest) (*membershipv1.Empty, error) {
			if err := orgs.Delete(ctx, req.OrganizationID, actorID); err != nil {
				return nil, err
			}
			return &membershipv1.Empty{}, nil
		})

	handle(rt, membershipv1.OrganizationServiceGetProcedure,
		func(ctx context.Context, actorID uuid.UUID, req *membershipv1.OrganizationRequest) (*membershipv1.OrganizationResponse, error) {
			if err := requireActor(actorID); err != nil {
				return nil, err
			}
			return orgResponse(orgs.Get(ctx, req.OrganizationID))
		})

	handle(rt, membershipv1.OrganizationServiceGetByRegistryNumberProcedure,
		func(ctx context.Context, actorID uuid.UUID, req *membershipv1.GetOrganizationByRegistryNumberRequest) (*membershipv1.OrganizationResponse, error) {
			if err := requireActor(actorID); err != nil {
				return nil, err
			}
			return orgResponse(orgs.GetByRegistryNumber(ctx, req.RegistryNumber))
		})

	handle(rt, membershipv1.OrganizationServiceSearchProcedure,
		func(ctx context.Context, actorID uuid.UUID, req *membershipv1.SearchOrganizationsRequest) (*membershipv1.List[*models.Organization], error) {
			if err := requireActor(actorID); err != nil {
				return nil, err
			}
			listing, err := orgs.Search(ctx, service.SearchOrganizationsInput{
				Name:        req.Name,
				YearFounded: req.YearFounded,
				CompanySize: req.CompanySize,
			}, req.Page)
			if err != nil {
				return nil, err
			}
			return toList(listing), nil
		})

	handle(rt, membershipv1.OrganizationServiceListUsersProcedure,
		func(ctx context.Context, actorID uuid.UUID, req *membershipv1.ListOrganizationUsersRequest) (*membershipv1.List[*models.User], error) {
			listing, err := orgs.ListUsers(ctx, req.OrganizationID, actorID, req.Page)
			if err != nil {
				return nil, err
			}
			return toList(listing), nil
		})
}
