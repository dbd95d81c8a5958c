// Package result holds the single-slot "last processed result" store.
//
// Every successful upload overwrites the slot in full. Concurrent uploads
// race on it and the last completed write wins; the slot is shared by all
// clients of the process.
package result

import (
	"context"
	"sync"

	"github.com/nikhilbhutani/mediatranslator/internal/models"
)

// Store is the last-result slot.
type Store interface {
	Set(ctx context.Context, r models.LastResult) error
	Get(ctx context.Context) (models.LastResult, error)
}

// MemoryStore keeps the slot in process memory. The zero value is an
// empty, ready-to-use store.
type MemoryStore struct {
	mu   sync.RWMutex
	last models.LastResult
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Set(_ context.Context, r models.LastResult) error {
	s.mu.Lock()
	s.last = r
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context) (models.LastResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, nil
}
