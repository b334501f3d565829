package audit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/membership/internal/models"
	"github.com/wolfeidau/membership/internal/store"
	"github.com/wolfeidau/membership/internal/store/memory"
)

var fixedNow = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

type failingSink struct {
	calls int
}

func (f *failingSink) Append(ctx context.Context, entry *models.AuditLog) error {
	f.calls++
	return errors.New("disk full")
}

func (f *failingSink) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, page store.Page) ([]*models.AuditLog, int, error) {
	return nil, 0, nil
}

func newUser(actorID uuid.UUID) *models.User {
	u := &models.User{
		ID:     uuid.Must(uuid.NewV7()),
		Email:  "ada@example.com",
		Status: models.UserStatusActive,
		Role:   models.RoleUser,
	}
	u.SetFullName("Ada Lovelace")
	u.Stamp(actorID, fixedNow)
	return u
}

func TestRecorder_Created(t *testing.T) {
	sink := memory.NewAuditLogStore()
	rec := NewRecorder(sink, WithClock(func() time.Time { return fixedNow }))

	creator := uuid.Must(uuid.NewV7())
	u := newUser(creator)

	rec.Created(context.Background(), u)

	entries := sink.All()
	require.Len(t, entries, 1)
	require.Equal(t, models.AuditActionCreate, entries[0].Action)
	require.Equal(t, "User", entries[0].EntityType)
	require.Equal(t, u.ID, entries[0].EntityID)
	require.Equal(t, creator, entries[0].ActorID)
	require.Equal(t, fixedNow, entries[0].Timestamp)
	require.Equal(t, "CREATED: "+u.String(), entries[0].Description)
}

func TestRecorder_Updated(t *testing.T) {
	sink := memory.NewAuditLogStore()
	rec := NewRecorder(sink)

	creator := uuid.Must(uuid.NewV7())
	editor := uuid.Must(uuid.NewV7())

	before := newUser(creator)
	after := before.Clone()
	after.SetFullName("Ada King")
	after.Touch(editor, fixedNow.Add(time.Hour))

	rec.Updated(context.Background(), before, after)

	entries := sink.All()
	require.Len(t, entries, 1)
	require.Equal(t, models.AuditActionUpdate, entries[0].Action)
	require.Equal(t, editor, entries[0].ActorID)
	require.Equal(t, "FROM: "+before.String()+"\nTO: "+after.String(), entries[0].Description)
}

func TestRecorder_SwallowsSinkFailure(t *testing.T) {
	sink := &failingSink{}
	rec := NewRecorder(sink)

	require.NotPanics(t, func() {
		rec.Created(context.Background(), newUser(models.SystemActorID))
	})
	require.Equal(t, 1, sink.calls)
}

func TestRecorder_WritesAfterCancellation(t *testing.T) {
	sink := memory.NewAuditLogStore()
	rec := NewRecorder(sink)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec.Created(ctx, newUser(models.SystemActorID))
	require.Equal(t, 1, sink.Len())
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		limit int
		want  string
	}{
		{name: "short", input: "abc", limit: 5, want: "abc"},
		{name: "exact", input: "abcde", limit: 5, want: "abcde"},
		{name: "long", input: "abcdefgh", limit: 5, want: "abcde"},
		{name: "multibyte within limit", input: "héllo", limit: 5, want: "héllo"},
		{name: "multibyte cut on rune boundary", input: "日本語テキスト", limit: 3, want: "日本語"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, truncate(tt.input, tt.limit))
		})
	}
}

func TestRecorder_BoundsDescription(t *testing.T) {
	sink := memory.NewAuditLogStore()
	rec := NewRecorder(sink)

	u := newUser(models.SystemActorID)
	u.SetFullName(strings.Repeat("x", 3*MaxDescriptionLength))

	rec.Created(context.Background(), u)

	entries := sink.All()
	require.Len(t, entries, 1)
	require.Equal(t, MaxDescriptionLength, len([]rune(entries[0].Description)))
	require.True(t, strings.HasPrefix(entries[0].Description, "CREATED: User{"))
}
