package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/buybuddy/backend/internal/domain"
)

// MemoryStore is a thread-safe in-memory SavedProductRepository. Used in
// tests and for development without a database.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]domain.SavedProduct
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]domain.SavedProduct),
	}
}

// Insert stores a new record. An existing record is never overwritten: a
// duplicate id is an error, not a merge.
func (s *MemoryStore) Insert(ctx context.Context, saved *domain.SavedProduct) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[saved.ID]; exists {
		return fmt.Errorf("saved product id %s already exists", saved.ID)
	}

	s.records[saved.ID] = *saved
	return nil
}

// ListByOwner returns the owner's records ordered by SavedAt descending.
// Records are copied out so callers cannot mutate the store.
func (s *MemoryStore) ListByOwner(ctx context.Context, ownerID string) ([]*domain.SavedProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []*domain.SavedProduct{}
	for _, record := range s.records {
		if record.OwnerID == ownerID {
			copied := record
			results = append(results, &copied)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if !results[i].SavedAt.Equal(results[j].SavedAt) {
			return results[i].SavedAt.After(results[j].SavedAt)
		}
		// Stable order for records saved in the same instant.
		return results[i].ID > results[j].ID
	})

	return results, nil
}

// Delete removes a record if the requester owns it. The store mutex makes
// the check-and-remove atomic: of two racing deletes for the same id, one
// succeeds and the other observes ErrNotFound.
func (s *MemoryStore) Delete(ctx context.Context, id, requesterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[id]
	if !exists {
		return domain.ErrNotFound
	}
	if record.OwnerID != requesterID {
		return domain.ErrNotOwner
	}

	delete(s.records, id)
	return nil
}

// Size returns the number of stored records (for tests and debugging).
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
