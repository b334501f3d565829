package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SystemActorID attributes changes made by the platform itself, such as
// invitation expiry and the bootstrap administrator.
var SystemActorID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// Attribution records when and by whom a record was created and last changed.
// It is embedded in every audited entity.
type Attribution struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy uuid.UUID `json:"created_by"`
	UpdatedBy uuid.UUID `json:"updated_by"`
}

// Attributed returns the attribution fields of the embedding entity.
func (a Attribution) Attributed() Attribution {
	return a
}

// Stamp sets both creation and update attribution to the given actor and time.
func (a *Attribution) Stamp(actorID uuid.UUID, now time.Time) {
	a.CreatedAt = now
	a.UpdatedAt = now
	a.CreatedBy = actorID
	a.UpdatedBy = actorID
}

// Touch records an update by the given actor.
func (a *Attribution) Touch(actorID uuid.UUID, now time.Time) {
	a.UpdatedAt = now
	a.UpdatedBy = actorID
}

// NormalizeName lowercases name and drops every character outside [a-z0-9].
// The result is used for case and punctuation insensitive search.
func NormalizeName(name string) string {
	lower := strings.ToLower(name)

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
