package server

import (
	"context"

	"github.com/google/uuid"
	membershipv1 "github.com/wolfeidau/membership/api/membership/v1"
	"github.com/wolfeidau/membership/internal/models"
	"github.com/wolfeidau/membership/internal/service"
)

func (s *Server) registerUsers(rt *routes) {
	users := s.services.Users

	userResponse := func(u *models.User, err error) (*membershipv1.UserResponse, error) {
		if err != nil {
			return nil, err
		}
		return &membershipv1.UserResponse{User: u}, nil
	}

	// Anonymous callers may only bootstrap the first administrator.
	handle(rt, membershipv1.UserServiceCreateProcedure,
		func(ctx context.Context, actorID uuid.UUID, req *membershipv1.CreateUserRequest) (*membershipv1.UserResponse, error) {
			return userResponse(users.Create(ctx, actorID, service.CreateUserInput{
				Email:    req.Email,
				FullName: req.FullName,
				Role:     req.Role,
			}))
		})

	handle(rt, membershipv1.UserServiceUpdateProcedure,
		func(ctx context.Context, actorID uuid.UUID, req *membershipv1.UpdateUserRequest) (*membershipv1.UserResponse, error) {
			return userResponse(users.Update(ctx, req.UserID, actorID, req.FullName))
		})

	handle(rt, membershipv1.UserServiceDeleteProcedure,
		func(ctx context.Context, actorID uuid.UUID, req *membershipv1.UserRequest) (*membershipv1.UserResponse, error) {
			return userResponse(users.Delete(ctx, req.UserID, actorID))
		})

	handle(rt, membershipv1.UserServiceActivateProcedure,
		func(ctx context.Context, actorID uuid.UUID, req *membershipv1.UserRequest) (*membershipv1.UserResponse, error) {
			return userResponse(users.Activate(ctx, req.UserID, actorID))
		})

	handle(rt, membershipv1.UserServiceDeactivateProcedure,
		func(ctx context.Context, actorID uuid.UUID, req *membershipv1.UserRequest) (*membershipv1.UserResponse, error) {
			return userResponse(users.Deactivate(ctx, req.UserID, actorID))
		})

	handle(rt, membershipv1.UserServiceGetProcedure,
		func(ctx context.Context, actorID uuid.UUID, req *membershipv1.UserRequest) (*membershipv1.UserResponse, error) {
			if err := requireActor(actorID); err != nil {
				return nil, err
			}
			return userResponse(users.Get(ctx, req.UserID))
		})

	handle(rt, membershipv1.UserServiceGetByEmailProcedure,
		func(ctx context.Context, actorID uuid.UUID, req *membershipv1.GetUserByEmailRequest) (*membershipv1.UserResponse, error) {
			if err := requireActor(actorID); err != nil {
				return nil, err
			}
			return userResponse(users.GetByEmail(ctx, req.Email))
		})

	handle(rt, membershipv1.UserServiceListProcedure,
		func(ctx context.Context, actorID uuid.UUID, req *membershipv1.ListUsersRequest) (*membershipv1.List[*models.User], error) {
			listing, err := users.List(ctx, actorID, req.Page)
			if err != nil {
				return nil, err
			}
			return toList(listing), nil
		})

	handle(rt, membershipv1.UserServiceSearchProcedure,
		func(ctx context.Context, actorID uuid.UUID, req *membershipv1.SearchUsersRequest) (*membershipv1.List[*models.User], error) {
			if err := requireActor(actorID); err != nil {
				return nil, err
			}
			listing, err := users.Search(ctx, req.Name, req.Page)
			if err != nil {
				return nil, err
			}
			return toList(listing), nil
		})

	handle(rt, membershipv1.UserServiceListOrganizationsProcedure,
		func(ctx context.Context, actorID uuid.UUID, req *membershipv1.ListUserOrganizationsRequest) (*membershipv1.List[*models.Organization], error) {
			listing, err := users.ListOrganizations(ctx, req.UserID, actorID, req.Page)
			if err != nil {
				return nil, err
			}
			return toList(listing), nil
		})
}
