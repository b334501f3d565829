package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfeidau/membership/internal/models"
	"github.com/wolfeidau/membership/internal/store"
)

// AuditLogStore implements store.AuditLogStore using PostgreSQL.
// Each Append is a single autocommit statement on the pool, so it is never part
// of, nor rolled back with, an entity transaction.
type AuditLogStore struct {
	pool *pgxpool.Pool
}

var _ store.AuditLogStore = (*AuditLogStore)(nil)

// NewAuditLogStore creates a new PostgreSQL-backed audit log store.
func NewAuditLogStore(pool *pgxpool.Pool) *AuditLogStore {
	return &AuditLogStore{
		pool: pool,
	}
}

// Append writes one audit record.
func (s *AuditLogStore) Append(ctx context.Context, entry *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (
			id, timestamp, actor_id, entity_type, entity_id, action, description
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	_, err := s.pool.Exec(ctx, query,
		entry.ID,
		entry.Timestamp,
		entry.ActorID,
		entry.EntityType,
		entry.EntityID,
		entry.Action,
		entry.Description,
	)
	if err != nil {
		return wrapError("append audit log", err)
	}

	return nil
}

// ListByEntity returns a page of records for an entity, newest first.
func (s *AuditLogStore) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, page store.Page) ([]*models.AuditLog, int, error) {
	page = page.Normalize()

	var total int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM audit_logs WHERE entity_type = $1 AND entity_id = $2
	`, entityType, entityID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, timestamp, actor_id, entity_type, entity_id, action, description
		FROM audit_logs
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY timestamp DESC, id DESC
		LIMIT $3 OFFSET $4
	`, entityType, entityID, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditLog
	for rows.Next() {
		var entry models.AuditLog
		err := rows.Scan(
			&entry.ID,
			&entry.Timestamp,
			&entry.ActorID,
			&entry.EntityType,
			&entry.EntityID,
			&entry.Action,
			&entry.Description,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit log: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating audit logs: %w", err)
	}

	return entries, total, nil
}
