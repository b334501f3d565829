package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wolfeidau/membership/internal/auth"
	"github.com/wolfeidau/membership/internal/models"
	"github.com/wolfeidau/membership/internal/store"
)

var auditedTypes = map[string]bool{
	(*models.User)(nil).EntityType():         true,
	(*models.Organization)(nil).EntityType(): true,
	(*models.Invitation)(nil).EntityType():   true,
}

// AuditService reads the audit trail.
type AuditService struct {
	gate *auth.Gate
	logs store.AuditLogStore
}

// NewAuditService creates an audit service.
func NewAuditService(stores Stores, gate *auth.Gate) *AuditService {
	return &AuditService{gate: gate, logs: stores.AuditLogs}
}

// ListForEntity returns the audit records of one entity, newest first. Admins only.
func (s *AuditService) ListForEntity(ctx context.Context, actorID uuid.UUID, entityType string, entityID uuid.UUID, page store.Page) (*Listing[*models.AuditLog], error) {
	if _, err := s.gate.Authorize(ctx, actorID, models.RoleAdmin); err != nil {
		return nil, err
	}

	if !auditedTypes[entityType] {
		return nil, fmt.Errorf("%w: entity type %q", ErrInvalidArgument, entityType)
	}

	entries, total, err := s.logs.ListByEntity(ctx, entityType, entityID, page)
	if err != nil {
		return nil, translate("list audit logs", err)
	}

	return newListing(entries, total, page), nil
}
