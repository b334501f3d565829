package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/membership/internal/models"
	"github.com/wolfeidau/membership/internal/store"
	"github.com/wolfeidau/membership/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// ErrUnauthenticated is returned when an operation requires an actor and none was supplied.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrActorNotFound is returned when no user exists for the actor id.
	ErrActorNotFound = errors.New("actor not found")

	// ErrActorInactive is returned when the actor exists but is not ACTIVE.
	ErrActorInactive = errors.New("actor inactive")

	// ErrInsufficientRole is returned when the actor's role is outside the required set.
	ErrInsufficientRole = errors.New("insufficient role")
)

// ActorDirectory resolves actor ids to user records.
type ActorDirectory interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

var _ ActorDirectory = (store.UserStore)(nil)

// Gate decides whether an actor may perform an action requiring one of a set of roles.
//
// The gate only checks identity, status and role. Scope rules such as "a
// manager may only act within their own organizations" are applied by callers
// against the returned actor.
type Gate struct {
	directory ActorDirectory
}

// NewGate creates a gate that resolves actors through directory.
func NewGate(directory ActorDirectory) *Gate {
	return &Gate{directory: directory}
}

// Authorize resolves actorID and checks it holds one of roles.
func (g *Gate) Authorize(ctx context.Context, actorID uuid.UUID, roles ...models.Role) (*models.User, error) {
	if actorID == uuid.Nil {
		return nil, g.deny(ctx, "unauthenticated", ErrUnauthenticated)
	}

	actor, err := g.directory.Get(ctx, actorID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, g.deny(ctx, "not_found", fmt.Errorf("%w: %s", ErrActorNotFound, actorID))
		}
		return nil, fmt.Errorf("failed to resolve actor: %w", err)
	}

	if actor.Status != models.UserStatusActive {
		return nil, g.deny(ctx, "inactive", fmt.Errorf("%w: %s is %s", ErrActorInactive, actorID, actor.Status))
	}

	if !slices.Contains(roles, actor.Role) {
		return nil, g.deny(ctx, "role", fmt.Errorf("%w: %s requires one of %v", ErrInsufficientRole, actor.Role, roles))
	}

	return actor, nil
}

func (g *Gate) deny(ctx context.Context, reason string, err error) error {
	telemetry.GetMetrics().AuthorizationDeniedTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("reason", reason)))

	log.Debug().Err(err).Str("reason", reason).Msg("Authorization denied")

	return err
}
