package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/wolfeidau/membership/internal/models"
	"github.com/wolfeidau/membership/internal/store"
)

// AuditLogStore implements store.AuditLogStore using in-memory storage.
// It keeps its own lock so audit writes never wait on entity writes.
type AuditLogStore struct {
	mu sync.RWMutex

	entries []*models.AuditLog
}

var _ store.AuditLogStore = (*AuditLogStore)(nil)

// NewAuditLogStore creates a new in-memory audit log store.
func NewAuditLogStore() *AuditLogStore {
	return &AuditLogStore{}
}

// Append adds a record to the log.
func (s *AuditLogStore) Append(ctx context.Context, entry *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *entry
	s.entries = append(s.entries, &clone)

	return nil
}

// ListByEntity returns a page of records for an entity, newest first.
func (s *AuditLogStore) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, page store.Page) ([]*models.AuditLog, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.AuditLog
	for _, entry := range s.entries {
		if entry.EntityType == entityType && entry.EntityID == entityID {
			matched = append(matched, entry)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return newerFirst(matched[i].Timestamp, matched[j].Timestamp, matched[i].ID, matched[j].ID)
	})

	start, end := page.Window(len(matched))
	result := make([]*models.AuditLog, 0, end-start)
	for _, entry := range matched[start:end] {
		clone := *entry
		result = append(result, &clone)
	}

	return result, len(matched), nil
}

// Len returns the number of records written.
func (s *AuditLogStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// All returns every record in write order.
func (s *AuditLogStore) All() []*models.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.AuditLog, 0, len(s.entries))
	for _, entry := range s.entries {
		clone := *entry
		result = append(result, &clone)
	}
	return result
}
