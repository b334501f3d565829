// Package audit records an immutable trail of entity mutations.
//
// Audited stores wrap the plain store implementations and hand explicit before
// and after snapshots to a Recorder, which appends one AuditLog per create or
// update. Audit writes never fail the mutation that triggered them.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/membership/internal/models"
	"github.com/wolfeidau/membership/internal/store"
	"github.com/wolfeidau/membership/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MaxDescriptionLength bounds the change description in runes.
const MaxDescriptionLength = 2048

// Entity is a record whose mutations are audited.
type Entity interface {
	EntityType() string
	EntityID() uuid.UUID
	Attributed() models.Attribution
	String() string
}

// Recorder writes audit records to a sink.
type Recorder struct {
	sink store.AuditLogStore
	now  func() time.Time
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock overrides the time source used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

// NewRecorder creates a recorder that appends to sink.
func NewRecorder(sink store.AuditLogStore, opts ...Option) *Recorder {
	r := &Recorder{
		sink: sink,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Created records the creation of e, attributed to its creator.
func (r *Recorder) Created(ctx context.Context, e Entity) {
	r.write(ctx, &models.AuditLog{
		ActorID:     e.Attributed().CreatedBy,
		EntityType:  e.EntityType(),
		EntityID:    e.EntityID(),
		Action:      models.AuditActionCreate,
		Description: "CREATED: " + e.String(),
	})
}

// Updated records a change from before to after, attributed to the updater
// recorded on after.
func (r *Recorder) Updated(ctx context.Context, before, after Entity) {
	r.write(ctx, &models.AuditLog{
		ActorID:     after.Attributed().UpdatedBy,
		EntityType:  after.EntityType(),
		EntityID:    after.EntityID(),
		Action:      models.AuditActionUpdate,
		Description: "FROM: " + before.String() + "\nTO: " + after.String(),
	})
}

func (r *Recorder) write(ctx context.Context, entry *models.AuditLog) {
	entry.ID = uuid.Must(uuid.NewV7())
	entry.Timestamp = r.now().UTC()
	entry.Description = truncate(entry.Description, MaxDescriptionLength)

	attrs := metric.WithAttributes(
		attribute.String("entity_type", entry.EntityType),
		attribute.String("action", string(entry.Action)),
	)

	// The record outlives the request that caused it.
	ctx = context.WithoutCancel(ctx)

	if err := r.sink.Append(ctx, entry); err != nil {
		telemetry.GetMetrics().AuditFailuresTotal.Add(ctx, 1, attrs)
		log.Error().Err(err).
			Str("entity_type", entry.EntityType).
			Str("entity_id", entry.EntityID.String()).
			Str("action", string(entry.Action)).
			Str("actor_id", entry.ActorID.String()).
			Msg("Failed to write audit log")
		return
	}

	telemetry.GetMetrics().AuditWritesTotal.Add(ctx, 1, attrs)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
