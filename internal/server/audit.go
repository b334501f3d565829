package server

import (
	"context"

	"github.com/google/uuid"
	membershipv1 "github.com/wolfeidau/membership/api/membership/v1"
	"github.com/wolfeidau/membership/internal/models"
)

func (s *Server) registerAudit(rt *routes) {
	handle(rt, membershipv1.AuditServiceListProcedure,
		func(ctx context.Context, actorID uuid.UUID, req *membershipv1.ListAuditLogsRequest) (*membershipv1.List[*models.AuditLog], error) {
			listing, err := s.services.Audit.ListForEntity(ctx, actorID, req.EntityType, req.EntityID, req.Page)
			if err != nil {
				return nil, err
			}
			return toList(listing), nil
		})
}
