package memory

import (
	"bytes"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/membership/internal/models"
)

// DB holds the state shared by the in-memory user, organization and invitation
// stores. A single lock covers all three so that writes spanning entities, such as
// the membership grant on invitation acceptance, are atomic.
// This implementation is for testing and development only - data is lost on restart.
type DB struct {
	mu sync.RWMutex

	users         map[uuid.UUID]*models.User            // user_id -> User (OrganizationIDs not stored)
	organizations map[uuid.UUID]*models.Organization    // org_id -> Organization
	invitations   map[uuid.UUID]*models.Invitation      // invitation_id -> Invitation
	memberships   map[uuid.UUID]map[uuid.UUID]time.Time // user_id -> org_id -> joined at
}

// NewDB creates an empty in-memory database.
func NewDB() *DB {
	return &DB{
		users:         make(map[uuid.UUID]*models.User),
		organizations: make(map[uuid.UUID]*models.Organization),
		invitations:   make(map[uuid.UUID]*models.Invitation),
		memberships:   make(map[uuid.UUID]map[uuid.UUID]time.Time),
	}
}

// Users returns a user store backed by the database.
func (db *DB) Users() *UserStore {
	return &UserStore{db: db}
}

// Organizations returns an organization store backed by the database.
func (db *DB) Organizations() *OrganizationStore {
	return &OrganizationStore{db: db}
}

// Invitations returns an invitation store backed by the database.
func (db *DB) Invitations() *InvitationStore {
	return &InvitationStore{db: db}
}

// addMembership must be called with the write lock held.
func (db *DB) addMembership(userID, orgID uuid.UUID, joinedAt time.Time) bool {
	orgs, ok := db.memberships[userID]
	if !ok {
		orgs = make(map[uuid.UUID]time.Time)
		db.memberships[userID] = orgs
	}
	if _, exists := orgs[orgID]; exists {
		return false
	}
	orgs[orgID] = joinedAt
	return true
}

// organizationIDs returns the organizations of a user in join order.
// Must be called with the lock held.
func (db *DB) organizationIDs(userID uuid.UUID) []uuid.UUID {
	orgs := db.memberships[userID]
	ids := make([]uuid.UUID, 0, len(orgs))
	for id := range orgs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ti, tj := orgs[ids[i]], orgs[ids[j]]
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return lessID(ids[i], ids[j])
	})
	return ids
}

// loadUser clones a stored user and materializes its memberships.
// Must be called with the lock held.
func (db *DB) loadUser(u *models.User) *models.User {
	clone := u.Clone()
	clone.OrganizationIDs = db.organizationIDs(u.ID)
	return clone
}

func lessID(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

// newerFirst orders records by creation time descending, breaking ties on ID.
func newerFirst(ta, tb time.Time, a, b uuid.UUID) bool {
	if !ta.Equal(tb) {
		return ta.After(tb)
	}
	return lessID(b, a)
}
