package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/membership/internal/models"
	"github.com/wolfeidau/membership/internal/store"
)

const invitationColumns = `
	i.id, i.user_id, i.organization_id, i.message, i.status,
	i.created_at, i.updated_at, i.created_by, i.updated_by`

// InvitationStore implements store.InvitationStore using PostgreSQL.
// The partial unique index idx_invitations_pending enforces a single PENDING
// invitation per user and organization.
type InvitationStore struct {
	pool *pgxpool.Pool
}

var _ store.InvitationStore = (*InvitationStore)(nil)

// NewInvitationStore creates a new PostgreSQL-backed invitation store.
// It shares the connection pool with other stores.
func NewInvitationStore(pool *pgxpool.Pool) *InvitationStore {
	return &InvitationStore{
		pool: pool,
	}
}

// Create creates a new invitation in the database.
func (s *InvitationStore) Create(ctx context.Context, inv *models.Invitation) error {
	query := `
		INSERT INTO invitations (
			id, user_id, organization_id, message, status,
			created_at, updated_at, created_by, updated_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	_, err := s.pool.Exec(ctx, query,
		inv.ID,
		inv.UserID,
		inv.OrganizationID,
		inv.Message,
		inv.Status,
		inv.CreatedAt,
		inv.UpdatedAt,
		inv.CreatedBy,
		inv.UpdatedBy,
	)
	if err != nil {
		return wrapError("create invitation", err)
	}

	log.Debug().
		Str("invitation_id", inv.ID.String()).
		Str("user_id", inv.UserID.String()).
		Str("org_id", inv.OrganizationID.String()).
		Msg("Created invitation")

	return nil
}

// Get retrieves an invitation by ID.
func (s *InvitationStore) Get(ctx context.Context, invitationID uuid.UUID) (*models.Invitation, error) {
	return s.getOne(ctx, s.pool, `WHERE i.id = $1`, invitationID)
}

// LatestForPair returns the newest invitation for a user and organization.
func (s *InvitationStore) LatestForPair(ctx context.Context, userID, orgID uuid.UUID) (*models.Invitation, error) {
	return s.getOne(ctx, s.pool, `
		WHERE i.user_id = $1 AND i.organization_id = $2
		ORDER BY i.created_at DESC, i.id DESC
		LIMIT 1
	`, userID, orgID)
}

// Transition updates the status only while the row still holds the expected status.
// Acceptance inserts the membership in the same transaction.
func (s *InvitationStore) Transition(ctx context.Context, inv *models.Invitation, from models.InvitationStatus) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
			UPDATE invitations SET
				status = $3,
				updated_at = $4,
				updated_by = $5
			WHERE id = $1 AND status = $2
		`, inv.ID, from, inv.Status, inv.UpdatedAt, inv.UpdatedBy)
		if err != nil {
			return err
		}

		if result.RowsAffected() == 0 {
			return s.missOrChanged(ctx, tx, inv.ID)
		}

		if inv.Status != models.InvitationStatusAccepted {
			return nil
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO user_organizations (user_id, organization_id)
			SELECT user_id, organization_id FROM invitations WHERE id = $1
			ON CONFLICT (user_id, organization_id) DO NOTHING
		`, inv.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrInvitationNotFound) || errors.Is(err, store.ErrInvitationStatusChanged) {
			return err
		}
		return wrapError("transition invitation", err)
	}

	log.Debug().
		Str("invitation_id", inv.ID.String()).
		Str("from", string(from)).
		Str("to", string(inv.Status)).
		Msg("Transitioned invitation")

	return nil
}

// Delete removes the invitation only while the row still holds the expected status.
func (s *InvitationStore) Delete(ctx context.Context, invitationID uuid.UUID, from models.InvitationStatus) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM invitations WHERE id = $1 AND status = $2`, invitationID, from)
	if err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}

	if result.RowsAffected() == 0 {
		return s.missOrChanged(ctx, s.pool, invitationID)
	}

	log.Info().
		Str("invitation_id", invitationID.String()).
		Msg("Deleted invitation")

	return nil
}

// ListByUser returns a page of invitations addressed to a user, newest first.
func (s *InvitationStore) ListByUser(ctx context.Context, userID uuid.UUID, page store.Page) ([]*models.Invitation, int, error) {
	return s.list(ctx, "i.user_id", userID, page)
}

// ListByOrganization returns a page of invitations for an organization, newest first.
func (s *InvitationStore) ListByOrganization(ctx context.Context, orgID uuid.UUID, page store.Page) ([]*models.Invitation, int, error) {
	return s.list(ctx, "i.organization_id", orgID, page)
}

// ListStale returns invitations in status created before the cutoff, oldest first.
func (s *InvitationStore) ListStale(ctx context.Context, status models.InvitationStatus, before time.Time) ([]*models.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations i
		WHERE i.status = $1 AND i.created_at < $2
		ORDER BY i.created_at, i.id`

	rows, err := s.pool.Query(ctx, query, status, before)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale invitations: %w", err)
	}

	invs, err := collectInvitations(rows)
	if err != nil {
		return nil, err
	}

	return invs, nil
}

func (s *InvitationStore) getOne(ctx context.Context, q querier, clause string, args ...any) (*models.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations i ` + clause

	inv, err := scanInvitation(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	return inv, nil
}

// missOrChanged explains a conditional write that touched no rows.
func (s *InvitationStore) missOrChanged(ctx context.Context, q querier, invitationID uuid.UUID) error {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM invitations WHERE id = $1)`, invitationID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check invitation: %w", err)
	}
	if !exists {
		return store.ErrInvitationNotFound
	}
	return store.ErrInvitationStatusChanged
}

func (s *InvitationStore) list(ctx context.Context, column string, id uuid.UUID, page store.Page) ([]*models.Invitation, int, error) {
	page = page.Normalize()

	var total int
	countQuery := `SELECT COUNT(*) FROM invitations i WHERE ` + column + ` = $1`
	if err := s.pool.QueryRow(ctx, countQuery, id).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count invitations: %w", err)
	}

	query := `SELECT ` + invitationColumns + ` FROM invitations i
		WHERE ` + column + ` = $1
		ORDER BY i.created_at DESC, i.id DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.pool.Query(ctx, query, id, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invitations: %w", err)
	}

	invs, err := collectInvitations(rows)
	if err != nil {
		return nil, 0, err
	}

	return invs, total, nil
}

func collectInvitations(rows pgx.Rows) ([]*models.Invitation, error) {
	defer rows.Close()

	var invs []*models.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invs = append(invs, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invitations: %w", err)
	}

	return invs, nil
}

func scanInvitation(row pgx.Row) (*models.Invitation, error) {
	var inv models.Invitation
	err := row.Scan(
		&inv.ID,
		&inv.UserID,
		&inv.OrganizationID,
		&inv.Message,
		&inv.Status,
		&inv.CreatedAt,
		&inv.UpdatedAt,
		&inv.CreatedBy,
		&inv.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
