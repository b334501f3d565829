package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wolfeidau/membership/internal/store"
)

// constraintErrors maps named constraints to the sentinel error callers match on.
var constraintErrors = map[string]error{
	"users_email_key":                         store.ErrUserEmailExists,
	"organizations_registry_number_key":       store.ErrOrganizationRegistryExists,
	"idx_invitations_pending":                 store.ErrPendingInvitationExists,
	"user_organizations_pkey":                 store.ErrAlreadyMember,
	"user_organizations_user_id_fkey":         store.ErrUserNotFound,
	"user_organizations_organization_id_fkey": store.ErrOrganizationNotFound,
	"invitations_user_id_fkey":                store.ErrUserNotFound,
	"invitations_organization_id_fkey":        store.ErrOrganizationNotFound,
}

// mapPostgresError maps PostgreSQL-specific errors to sentinel errors.
// Returns the original error if it's not a PostgreSQL error or doesn't match known patterns.
func mapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	// Check if it's a PostgreSQL error
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	// Map error codes to sentinel errors
	switch pgErr.Code {
	case pgerrcode.UniqueViolation, pgerrcode.ForeignKeyViolation:
		if sentinel, ok := constraintErrors[pgErr.ConstraintName]; ok {
			return sentinel
		}
		return fmt.Errorf("constraint violation: %s: %w", pgErr.ConstraintName, err)

	case pgerrcode.CheckViolation:
		// Invalid enum value reached the database
		return fmt.Errorf("check constraint violation: %s: %w", pgErr.ConstraintName, err)

	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		// Retryable transaction errors
		return fmt.Errorf("transaction conflict (retryable): %w", err)

	case pgerrcode.ConnectionException,
		pgerrcode.ConnectionDoesNotExist,
		pgerrcode.ConnectionFailure,
		pgerrcode.CannotConnectNow,
		pgerrcode.SQLClientUnableToEstablishSQLConnection:
		// Connection errors
		return fmt.Errorf("database connection error: %w", err)

	case pgerrcode.AdminShutdown,
		pgerrcode.CrashShutdown:
		// Server unavailable
		return fmt.Errorf("database server unavailable: %w", err)

	case pgerrcode.QueryCanceled:
		// Context cancellation or timeout
		return fmt.Errorf("query canceled: %w", err)

	case pgerrcode.InsufficientResources,
		pgerrcode.DiskFull,
		pgerrcode.OutOfMemory,
		pgerrcode.TooManyConnections:
		// Resource errors (throttling-like)
		return fmt.Errorf("database resource limit: %w", err)

	default:
		// Unknown error - wrap with PostgreSQL error details
		return fmt.Errorf("postgres error [%s]: %s (detail: %s, hint: %s): %w",
			pgErr.Code, pgErr.Message, pgErr.Detail, pgErr.Hint, err)
	}
}

// isSentinel reports whether err was mapped to one of the store sentinel errors.
func isSentinel(err error) bool {
	for _, sentinel := range constraintErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// wrapError maps err and, unless it became a sentinel, adds the operation context.
func wrapError(op string, err error) error {
	mapped := mapPostgresError(err)
	if isSentinel(mapped) {
		return mapped
	}
	return fmt.Errorf("failed to %s: %w", op, mapped)
}
