package client

import (
	"context"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	membershipv1 "github.com/wolfeidau/membership/api/membership/v1"
	"github.com/wolfeidau/membership/internal/auth"
	"github.com/wolfeidau/membership/internal/models"
)

// Config holds common client configuration
type Config struct {
	ServerURL string
	Timeout   time.Duration
	Debug     bool

	// Token is sent as a bearer token when set.
	Token string
	// ActorID is sent in the actor header when set, for servers running without token authentication.
	ActorID uuid.UUID
}

// DefaultConfig returns a default client configuration
func DefaultConfig() Config {
	return Config{
		ServerURL: "https://localhost:8443",
		Timeout:   30 * time.Second,
		Debug:     false,
	}
}

// Client calls the membership services.
type Client struct {
	httpClient connect.HTTPClient
	baseURL    string
	opts       []connect.ClientOption
}

// New creates a client with the given configuration.
func New(config Config, interceptors ...connect.Interceptor) *Client {
	httpClient := &http.Client{
		Timeout: config.Timeout,
	}
	return NewWithHTTPClient(httpClient, config, interceptors...)
}

// NewWithHTTPClient creates a client that sends requests through httpClient.
func NewWithHTTPClient(httpClient connect.HTTPClient, config Config, interceptors ...connect.Interceptor) *Client {
	interceptors = append([]connect.Interceptor{newCredentials(config)}, interceptors...)

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(config.ServerURL, "/"),
		opts: append(membershipv1.ClientOptions(),
			connect.WithInterceptors(interceptors...),
		),
	}
}

func newCredentials(config Config) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if config.Token != "" {
				req.Header().Set("Authorization", "Bearer "+config.Token)
			}
			if config.ActorID != uuid.Nil {
				req.Header().Set(auth.ActorHeader, config.ActorID.String())
			}
			return next(ctx, req)
		}
	}
}

func call[Req, Res any](ctx context.Context, c *Client, procedure string, req *Req) (*Res, error) {
	rpc := connect.NewClient[Req, Res](c.httpClient, c.baseURL+procedure, c.opts...)

	resp, err := rpc.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// Invitations

func (c *Client) SendInvitation(ctx context.Context, req *membershipv1.SendInvitationRequest) (*models.Invitation, error) {
	resp, err := call[membershipv1.SendInvitationRequest, membershipv1.InvitationResponse](ctx, c, membershipv1.InvitationServiceSendProcedure, req)
	if err != nil {
		return nil, err
	}
	return resp.Invitation, nil
}

func (c *Client) SetInvitationStatus(ctx context.Context, invitationID uuid.UUID, status models.InvitationStatus) (*models.Invitation, error) {
	resp, err := call[membershipv1.SetInvitationStatusRequest, membershipv1.InvitationResponse](ctx, c, membershipv1.InvitationServiceSetStatusProcedure,
		&membershipv1.SetInvitationStatusRequest{InvitationID: invitationID, Status: status})
	if err != nil {
		return nil, err
	}
	return resp.Invitation, nil
}

func (c *Client) DeleteInvitation(ctx context.Context, invitationID uuid.UUID) error {
	_, err := call[membershipv1.InvitationRequest, membershipv1.Empty](ctx, c, membershipv1.InvitationServiceDeleteProcedure,
		&membershipv1.InvitationRequest{InvitationID: invitationID})
	return err
}

func (c *Client) GetInvitation(ctx context.Context, invitationID uuid.UUID) (*models.Invitation, error) {
	resp, err := call[membershipv1.InvitationRequest, membershipv1.InvitationResponse](ctx, c, membershipv1.InvitationServiceGetProcedure,
		&membershipv1.InvitationRequest{InvitationID: invitationID})
	if err != nil {
		return nil, err
	}
	return resp.Invitation, nil
}

func (c *Client) ListInvitationsForUser(ctx context.Context, req *membershipv1.ListInvitationsForUserRequest) (*membershipv1.List[*models.Invitation], error) {
	return call[membershipv1.ListInvitationsForUserRequest, membershipv1.List[*models.Invitation]](ctx, c, membershipv1.InvitationServiceListForUserProcedure, req)
}

func (c *Client) ListInvitationsForOrganization(ctx context.Context, req *membershipv1.ListInvitationsForOrganizationRequest) (*membershipv1.List[*models.Invitation], error) {
	return call[membershipv1.ListInvitationsForOrganizationRequest, membershipv1.List[*models.Invitation]](ctx, c, membershipv1.InvitationServiceListForOrganizationProcedure, req)
}

// Users

func (c *Client) userCall(ctx context.Context, procedure string, userID uuid.UUID) (*models.User, error) {
	resp, err := call[membershipv1.UserRequest, membershipv1.UserResponse](ctx, c, procedure, &membershipv1.UserRequest{UserID: userID})
	if err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *Client) CreateUser(ctx context.Context, req *membershipv1.CreateUserRequest) (*models.User, error) {
	resp, err := call[membershipv1.CreateUserRequest, membershipv1.UserResponse](ctx, c, membershipv1.UserServiceCreateProcedure, req)
	if err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *Client) UpdateUser(ctx context.Context, userID uuid.UUID, fullName string) (*models.User, error) {
	resp, err := call[membershipv1.UpdateUserRequest, membershipv1.UserResponse](ctx, c, membershipv1.UserServiceUpdateProcedure,
		&membershipv1.UpdateUserRequest{UserID: userID, FullName: fullName})
	if err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *Client) DeleteUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return c.userCall(ctx, membershipv1.UserServiceDeleteProcedure, userID)
}

func (c *Client) ActivateUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return c.userCall(ctx, membershipv1.UserServiceActivateProcedure, userID)
}

func (c *Client) DeactivateUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return c.userCall(ctx, membershipv1.UserServiceDeactivateProcedure, userID)
}

func (c *Client) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return c.userCall(ctx, membershipv1.UserServiceGetProcedure, userID)
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	resp, err := call[membershipv1.GetUserByEmailRequest, membershipv1.UserResponse](ctx, c, membershipv1.UserServiceGetByEmailProcedure,
		&membershipv1.GetUserByEmailRequest{Email: email})
	if err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *Client) ListUsers(ctx context.Context, req *membershipv1.ListUsersRequest) (*membershipv1.List[*models.User], error) {
	return call[membershipv1.ListUsersRequest, membershipv1.List[*models.User]](ctx, c, membershipv1.UserServiceListProcedure, req)
}

func (c *Client) SearchUsers(ctx context.Context, req *membershipv1.SearchUsersRequest) (*membershipv1.List[*models.User], error) {
	return call[membershipv1.SearchUsersRequest, membershipv1.List[*models.User]](ctx, c, membershipv1.UserServiceSearchProcedure, req)
}

func (c *Client) ListUserOrganizations(ctx context.Context, req *membershipv1.ListUserOrganizationsRequest) (*membershipv1.List[*models.Organization], error) {
	return call[membershipv1.ListUserOrganizationsRequest, membershipv1.List[*models.Organization]](ctx, c, membershipv1.UserServiceListOrganizationsProcedure, req)
}

// Organizations

func (c *Client) CreateOrganization(ctx context.Context, req *membershipv1.CreateOrganizationRequest) (*models.Organization, error) {
	resp, err := call[membershipv1.CreateOrganizationRequest, membershipv1.OrganizationResponse](ctx, c, membershipv1.OrganizationServiceCreateProcedure, req)
	if err != nil {
		return nil, err
	}
	return resp.Organization, nil
}

func (c *Client) UpdateOrganization(ctx context.Context, req *membershipv1.UpdateOrganizationRequest) (*models.Organization, error) {
	resp, err := call[membershipv1.UpdateOrganizationRequest, membershipv1.OrganizationResponse](ctx, c, membershipv1.OrganizationServiceUpdateProcedure, req)
	if err != nil {
		return nil, err
	}
	return resp.Organization, nil
}

func (c *Client) DeleteOrganization(ctx context.Context, orgID uuid.UUID) error {
	_, err := call[membershipv1.OrganizationRequest, membershipv1.Empty](ctx, c, membershipv1.OrganizationServiceDeleteProcedure,
		&membershipv1.OrganizationRequest{OrganizationID: orgID})
	return err
}

func (c *Client) GetOrganization(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	resp, err := call[membershipv1.OrganizationRequest, membershipv1.OrganizationResponse](ctx, c, membershipv1.OrganizationServiceGetProcedure,
		&membershipv1.OrganizationRequest{OrganizationID: orgID})
	if err != nil {
		return nil, err
	}
	return resp.Organization, nil
}

func (c *Client) GetOrganizationByRegistryNumber(ctx context.Context, registryNumber string) (*models.Organization, error) {
	resp, err := call[membershipv1.GetOrganizationByRegistryNumberRequest, membershipv1.OrganizationResponse](ctx, c, membershipv1.OrganizationServiceGetByRegistryNumberProcedure,
		&membershipv1.GetOrganizationByRegistryNumberRequest{RegistryNumber: registryNumber})
	if err != nil {
		return nil, err
	}
	return resp.Organization, nil
}

func (c *Client) SearchOrganizations(ctx context.Context, req *membershipv1.SearchOrganizationsRequest) (*membershipv1.List[*models.Organization], error) {
	return call[membershipv1.SearchOrganizationsRequest, membershipv1.List[*models.Organization]](ctx, c, membershipv1.OrganizationServiceSearchProcedure, req)
}

func (c *Client) ListOrganizationUsers(ctx context.Context, req *membershipv1.ListOrganizationUsersRequest) (*membershipv1.List[*models.User], error) {
	return call[membershipv1.ListOrganizationUsersRequest, membershipv1.List[*models.User]](ctx, c, membershipv1.OrganizationServiceListUsersProcedure, req)
}

// Audit

func (c *Client) ListAuditLogs(ctx context.Context, req *membershipv1.ListAuditLogsRequest) (*membershipv1.List[*models.AuditLog], error) {
	return call[membershipv1.ListAuditLogsRequest, membershipv1.List[*models.AuditLog]](ctx, c, membershipv1.AuditServiceListProcedure, req)
}
