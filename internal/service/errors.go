package service

import (
	"errors"
	"fmt"

	"github.com/wolfeidau/membership/internal/store"
)

// Errors returned by the services. Authorization failures from the gate are
// returned unchanged and live in the auth package.
var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAccessDenied is returned when the actor holds a permitted role but the
	// action falls outside their scope.
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidTransition is returned for an illegal invitation status change.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrAlreadyMember is returned when inviting a user who already belongs to the organization.
	ErrAlreadyMember = errors.New("already a member")

	// ErrInvitationConflict is returned when a pending invitation exists for the
	// pair or the latest invitation was rejected.
	ErrInvitationConflict = errors.New("invitation conflict")

	// ErrAlreadyDeleted is returned when mutating a user that has been deleted.
	ErrAlreadyDeleted = errors.New("already deleted")

	// ErrConflict is returned when a unique business key is already taken.
	ErrConflict = errors.New("conflict")

	// ErrInvalidArgument is returned for malformed input.
	ErrInvalidArgument = errors.New("invalid argument")
)

// translate maps store sentinels onto the service taxonomy. Unknown errors are
// wrapped with op.
func translate(op string, err error) error {
	switch {
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrOrganizationNotFound),
		errors.Is(err, store.ErrInvitationNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, store.ErrUserEmailExists),
		errors.Is(err, store.ErrOrganizationRegistryExists):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, store.ErrPendingInvitationExists):
		return fmt.Errorf("%w: %v", ErrInvitationConflict, err)
	case errors.Is(err, store.ErrAlreadyMember):
		return fmt.Errorf("%w: %v", ErrAlreadyMember, err)
	case errors.Is(err, store.ErrInvitationStatusChanged):
		return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
