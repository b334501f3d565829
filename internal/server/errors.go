package server

import (
	"context"
	"errors"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/membership/internal/auth"
	"github.com/wolfeidau/membership/internal/service"
)

var errInternal = errors.New("internal error")

// connectError maps a service error onto a Connect code. Unclassified errors
// are logged and replaced so storage details never reach the caller.
func connectError(ctx context.Context, err error) error {
	code, ok := classify(err)
	if !ok {
		zerolog.Ctx(ctx).Error().Err(err).Msg("unhandled service error")
		return connect.NewError(connect.CodeInternal, errInternal)
	}
	return connect.NewError(code, err)
}

func classify(err error) (connect.Code, bool) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return connect.CodeUnauthenticated, true
	case errors.Is(err, auth.ErrActorNotFound),
		errors.Is(err, auth.ErrActorInactive),
		errors.Is(err, auth.ErrInsufficientRole),
		errors.Is(err, service.ErrAccessDenied):
		return connect.CodePermissionDenied, true
	case errors.Is(err, service.ErrNotFound):
		return connect.CodeNotFound, true
	case errors.Is(err, service.ErrInvalidTransition):
		return connect.CodeFailedPrecondition, true
	case errors.Is(err, service.ErrAlreadyMember),
		errors.Is(err, service.ErrInvitationConflict),
		errors.Is(err, service.ErrConflict):
		return connect.CodeAlreadyExists, true
	case errors.Is(err, service.ErrAlreadyDeleted):
		return connect.CodeAborted, true
	case errors.Is(err, service.ErrInvalidArgument):
		return connect.CodeInvalidArgument, true
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled, true
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded, true
	}
	return connect.CodeUnknown, false
}
