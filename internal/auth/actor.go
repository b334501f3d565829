package auth

import (
	"context"
	"net/http"

	"connectrpc.com/authn"
	"github.com/google/uuid"
)

// ActorHeader carries the actor id when the server runs without token authentication.
const ActorHeader = "X-User-ID"

// WithActor returns a context carrying actorID as the authenticated identity.
func WithActor(ctx context.Context, actorID uuid.UUID) context.Context {
	return authn.SetInfo(ctx, actorID)
}

// ActorFromContext returns the actor id set by the authentication middleware,
// or uuid.Nil for anonymous requests.
func ActorFromContext(ctx context.Context) uuid.UUID {
	actorID, _ := authn.GetInfo(ctx).(uuid.UUID)
	return actorID
}

// NewHeaderAuthFunc returns an authn.AuthFunc that trusts the ActorHeader.
// It is meant for local development only.
func NewHeaderAuthFunc() authn.AuthFunc {
	return func(ctx context.Context, req *http.Request) (any, error) {
		value := req.Header.Get(ActorHeader)
		if value == "" {
			return uuid.Nil, nil
		}

		actorID, err := uuid.Parse(value)
		if err != nil {
			return nil, authn.Errorf("invalid %s header", ActorHeader)
		}

		return actorID, nil
	}
}
