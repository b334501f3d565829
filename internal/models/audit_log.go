package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction is the kind of mutation an audit record describes.
type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
)

// AuditLog is an append-only record of a change to an audited entity.
// EntityType and EntityID are a lookup key only, the entity may since have been deleted.
type AuditLog struct {
	ID          uuid.UUID   `json:"id"` // UUIDv7
	Timestamp   time.Time   `json:"timestamp"`
	ActorID     uuid.UUID   `json:"actor_id"`
	EntityType  string      `json:"entity_type"`
	EntityID    uuid.UUID   `json:"entity_id"`
	Action      AuditAction `json:"action"`
	Description string      `json:"description"`
}
