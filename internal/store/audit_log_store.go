package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/wolfeidau/membership/internal/models"
)

// AuditLogStore persists audit records. Records are append-only: there is no
// update or delete operation.
type AuditLogStore interface {
	// Append writes one record independently of any other in-flight write.
	Append(ctx context.Context, entry *models.AuditLog) error

	// ListByEntity returns one page of records for an entity, newest first, plus the total.
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, page Page) ([]*models.AuditLog, int, error)
}
