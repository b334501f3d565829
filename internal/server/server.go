package server

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	membershipv1 "github.com/wolfeidau/membership/api/membership/v1"
	"github.com/wolfeidau/membership/internal/auth"
	"github.com/wolfeidau/membership/internal/logger"
	"github.com/wolfeidau/membership/internal/service"
)

// Services are the domain services exposed over RPC.
type Services struct {
	Users         *service.UserService
	Organizations *service.OrganizationService
	Invitations   *service.InvitationService
	Audit         *service.AuditService
}

// Server exposes the membership services over Connect.
type Server struct {
	services Services
}

// NewServer creates a new server for the given services
func NewServer(services Services) *Server {
	return &Server{services: services}
}

// Handler returns the HTTP handler for the server. The authentication
// middleware is expected to wrap it so the actor can be read from the context.
func (s *Server) Handler(log zerolog.Logger, interceptors ...connect.Interceptor) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint for load balancer
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	rt := &routes{
		mux: mux,
		opts: append(membershipv1.HandlerOptions(),
			connect.WithInterceptors(append([]connect.Interceptor{logger.NewConnectRequests(log)}, interceptors...)...),
		),
	}

	s.registerInvitations(rt)
	s.registerUsers(rt)
	s.registerOrganizations(rt)
	s.registerAudit(rt)

	return mux
}

type routes struct {
	mux  *http.ServeMux
	opts []connect.HandlerOption
}

// handle registers a unary procedure. fn receives the authenticated actor,
// uuid.Nil for anonymous callers.
func handle[Req, Res any](rt *routes, procedure string, fn func(ctx context.Context, actorID uuid.UUID, req *Req) (*Res, error)) {
	rt.mux.Handle(procedure, connect.NewUnaryHandler(
		procedure,
		func(ctx context.Context, req *connect.Request[Req]) (*connect.Response[Res], error) {
			res, err := fn(ctx, auth.ActorFromContext(ctx), req.Msg)
			if err != nil {
				return nil, connectError(ctx, err)
			}
			return connect.NewResponse(res), nil
		},
		rt.opts...,
	))
}

// requireActor rejects anonymous callers on read endpoints that carry no
// authorization rule of their own.
func requireActor(actorID uuid.UUID) error {
	if actorID == uuid.Nil {
		return auth.ErrUnauthenticated
	}
	return nil
}

func toList[T any](l *service.Listing[T]) *membershipv1.List[T] {
	return &membershipv1.List[T]{
		Items:  l.Items,
		Total:  l.Total,
		Offset: l.Offset,
		Limit:  l.Limit,
	}
}
