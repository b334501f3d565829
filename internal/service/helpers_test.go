package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/membership/internal/audit"
	"github.com/wolfeidau/membership/internal/auth"
	"github.com/wolfeidau/membership/internal/models"
	"github.com/wolfeidau/membership/internal/notify"
	"github.com/wolfeidau/membership/internal/store/memory"
)

var baseTime = time.Date(2025, 4, 7, 8, 30, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingSender struct {
	mu   sync.Mutex
	sent []*notify.Notification
	fail bool
}

func (r *recordingSender) Send(ctx context.Context, n *notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	if r.fail {
		return errors.New("mail relay unavailable")
	}
	return nil
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

type fixture struct {
	clock    *fakeClock
	auditLog *memory.AuditLogStore
	stores   Stores
	sender   *recordingSender

	users       *UserService
	orgs        *OrganizationService
	invitations *InvitationService
	audits      *AuditService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &fakeClock{now: baseTime}
	db := memory.NewDB()
	auditLog := memory.NewAuditLogStore()
	rec := audit.NewRecorder(auditLog, audit.WithClock(clock.Now))

	stores := Stores{
		Users:         audit.NewUserStore(db.Users(), rec),
		Organizations: audit.NewOrganizationStore(db.Organizations(), rec),
		Invitations:   audit.NewInvitationStore(db.Invitations(), rec),
		AuditLogs:     auditLog,
	}
	gate := auth.NewGate(stores.Users)
	sender := &recordingSender{}

	opts := []Option{WithClock(clock), WithSender(sender)}

	return &fixture{
		clock:       clock,
		auditLog:    auditLog,
		stores:      stores,
		sender:      sender,
		users:       NewUserService(stores, gate, opts...),
		orgs:        NewOrganizationService(stores, gate, opts...),
		invitations: NewInvitationService(stores, gate, opts...),
		audits:      NewAuditService(stores, gate),
	}
}

// seedUser writes a user straight to the store, bypassing the service rules.
func (f *fixture) seedUser(t *testing.T, role models.Role, status models.UserStatus) *models.User {
	t.Helper()

	u := &models.User{
		ID:     uuid.Must(uuid.NewV7()),
		Email:  uuid.NewString() + "@example.com",
		Status: status,
		Role:   role,
	}
	u.SetFullName(string(role) + " " + string(status))
	u.Stamp(models.SystemActorID, f.clock.Now())

	require.NoError(t, f.stores.Users.Create(context.Background(), u))
	return u
}

func (f *fixture) seedOrganization(t *testing.T, founder *models.User) *models.Organization {
	t.Helper()

	org := &models.Organization{
		ID:             uuid.Must(uuid.NewV7()),
		RegistryNumber: uuid.NewString(),
		ContactEmail:   "office@example.com",
		CompanySize:    50,
		YearFounded:    1998,
	}
	org.SetName("Org of " + founder.FullName)
	org.Stamp(founder.ID, f.clock.Now())

	require.NoError(t, f.stores.Organizations.Create(context.Background(), org, founder.ID))
	return org
}

func (f *fixture) reloadUser(t *testing.T, userID uuid.UUID) *models.User {
	t.Helper()

	u, err := f.stores.Users.Get(context.Background(), userID)
	require.NoError(t, err)
	return u
}

func ptr[T any](v T) *T {
	return &v
}
