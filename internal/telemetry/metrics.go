package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/membership"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Invitation metrics
	InvitationsCreatedTotal      metric.Int64Counter
	InvitationsTransitionedTotal metric.Int64Counter
	InvitationsDeletedTotal      metric.Int64Counter

	// Expiry sweep metrics
	InvitationsExpiredTotal metric.Int64Counter
	SweepFailuresTotal      metric.Int64Counter
	SweepDuration           metric.Float64Histogram

	// Authorization metrics
	AuthorizationDeniedTotal metric.Int64Counter

	// Audit metrics
	AuditWritesTotal   metric.Int64Counter
	AuditFailuresTotal metric.Int64Counter

	// Notification metrics
	NotificationsSentTotal    metric.Int64Counter
	NotificationFailuresTotal metric.Int64Counter
	NotificationsDroppedTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	// Invitation metrics
	m.InvitationsCreatedTotal, _ = meter.Int64Counter(
		"membership.invitations.created.total",
		metric.WithDescription("Total number of invitations created"),
		metric.WithUnit("{invitation}"),
	)

	m.InvitationsTransitionedTotal, _ = meter.Int64Counter(
		"membership.invitations.transitioned.total",
		metric.WithDescription("Total number of invitation status transitions made by actors"),
		metric.WithUnit("{invitation}"),
	)

	m.InvitationsDeletedTotal, _ = meter.Int64Counter(
		"membership.invitations.deleted.total",
		metric.WithDescription("Total number of pending invitations deleted"),
		metric.WithUnit("{invitation}"),
	)

	// Expiry sweep metrics
	m.InvitationsExpiredTotal, _ = meter.Int64Counter(
		"membership.invitations.expired.total",
		metric.WithDescription("Total number of invitations expired by the sweeper"),
		metric.WithUnit("{invitation}"),
	)

	m.SweepFailuresTotal, _ = meter.Int64Counter(
		"membership.sweep.failures.total",
		metric.WithDescription("Total number of invitations the sweeper failed to expire"),
		metric.WithUnit("{error}"),
	)

	m.SweepDuration, _ = meter.Float64Histogram(
		"membership.sweep.duration",
		metric.WithDescription("Duration of expiry sweep runs"),
		metric.WithUnit("ms"),
	)

	// Authorization metrics
	m.AuthorizationDeniedTotal, _ = meter.Int64Counter(
		"membership.authz.denied.total",
		metric.WithDescription("Total number of requests rejected by the authorization gate"),
		metric.WithUnit("{request}"),
	)

	// Audit metrics
	m.AuditWritesTotal, _ = meter.Int64Counter(
		"membership.audit.writes.total",
		metric.WithDescription("Total number of audit records written"),
		metric.WithUnit("{record}"),
	)

	m.AuditFailuresTotal, _ = meter.Int64Counter(
		"membership.audit.failures.total",
		metric.WithDescription("Total number of audit records that failed to persist"),
		metric.WithUnit("{error}"),
	)

	// Notification metrics
	m.NotificationsSentTotal, _ = meter.Int64Counter(
		"membership.notifications.sent.total",
		metric.WithDescription("Total number of invitation notifications delivered"),
		metric.WithUnit("{notification}"),
	)

	m.NotificationFailuresTotal, _ = meter.Int64Counter(
		"membership.notifications.failures.total",
		metric.WithDescription("Total number of invitation notifications that failed delivery"),
		metric.WithUnit("{error}"),
	)

	m.NotificationsDroppedTotal, _ = meter.Int64Counter(
		"membership.notifications.dropped.total",
		metric.WithDescription("Total number of notifications dropped because the delivery queue was full"),
		metric.WithUnit("{notification}"),
	)

	return m
}
