package form

import (
	"context"
	"sync"

	"vouch/internal/verification/models"
	id "vouch/pkg/domain"
	"vouch/pkg/platform/sentinel"
)

// InMemoryStore holds drafts in a map. Used in tests and when Redis is not
// configured. Snapshots are cloned on the way in and out so callers never
// share slices or document pointers with the store.
type InMemoryStore struct {
	mu     sync.RWMutex
	drafts map[id.UserID]*models.FormState
}

// NewInMemoryStore creates an empty draft store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{drafts: make(map[id.UserID]*models.FormState)}
}

func (s *InMemoryStore) Get(ctx context.Context, userID id.UserID) (*models.FormState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	draft, ok := s.drafts[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return draft.Clone(), nil
}

func (s *InMemoryStore) Put(ctx context.Context, f *models.FormState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[f.UserID] = f.Clone()
	return nil
}

func (s *InMemoryStore) Delete(ctx context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, userID)
	return nil
}
