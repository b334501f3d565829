package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/wolfeidau/membership/internal/models"
	"github.com/wolfeidau/membership/internal/store"
)

// UserStore implements store.UserStore on top of a shared DB.
type UserStore struct {
	db *DB
}

var _ store.UserStore = (*UserStore)(nil)

// NewUserStore creates a user store over its own empty database.
func NewUserStore() *UserStore {
	return NewDB().Users()
}

// Create creates a new user in memory.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	return s.insert(user)
}

// CreateFirst creates user only while no other user is stored.
func (s *UserStore) CreateFirst(ctx context.Context, user *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if len(s.db.users) > 0 {
		return store.ErrUsersExist
	}

	return s.insert(user)
}

// insert requires the write lock.
func (s *UserStore) insert(user *models.User) error {
	for _, existing := range s.db.users {
		if existing.Email == user.Email {
			return store.ErrUserEmailExists
		}
	}

	// Memberships live in the membership index, not on the stored record
	clone := user.Clone()
	clone.OrganizationIDs = nil
	s.db.users[user.ID] = clone

	return nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	user, exists := s.db.users[userID]
	if !exists {
		return nil, store.ErrUserNotFound
	}

	return s.db.loadUser(user), nil
}

// GetByEmail retrieves a user by email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, user := range s.db.users {
		if user.Email == email {
			return s.db.loadUser(user), nil
		}
	}

	return nil, store.ErrUserNotFound
}

// Update updates an existing user.
func (s *UserStore) Update(ctx context.Context, user *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	existing, exists := s.db.users[user.ID]
	if !exists {
		return store.ErrUserNotFound
	}

	existing.FullName = user.FullName
	existing.NormalizedName = user.NormalizedName
	existing.Status = user.Status
	existing.Role = user.Role
	existing.UpdatedAt = user.UpdatedAt
	existing.UpdatedBy = user.UpdatedBy

	return nil
}

// Count returns the number of stored users.
func (s *UserStore) Count(ctx context.Context) (int, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	return len(s.db.users), nil
}

// List returns a page of users matching the filter, oldest first.
func (s *UserStore) List(ctx context.Context, filter store.UserFilter, page store.Page) ([]*models.User, int, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var matched []*models.User
	for _, user := range s.db.users {
		if filter.ExcludeDeleted && user.Status == models.UserStatusDeleted {
			continue
		}
		if filter.NameContains != "" && !strings.Contains(user.NormalizedName, filter.NameContains) {
			continue
		}
		if filter.OrganizationID != uuid.Nil {
			if _, member := s.db.memberships[user.ID][filter.OrganizationID]; !member {
				continue
			}
		}
		matched = append(matched, user)
	}

	sort.Slice(matched, func(i, j int) bool {
		return newerFirst(matched[j].CreatedAt, matched[i].CreatedAt, matched[j].ID, matched[i].ID)
	})

	start, end := page.Window(len(matched))
	result := make([]*models.User, 0, end-start)
	for _, user := range matched[start:end] {
		result = append(result, s.db.loadUser(user))
	}

	return result, len(matched), nil
}
