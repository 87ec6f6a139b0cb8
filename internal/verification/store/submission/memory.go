// Package submission persists verification submissions. One live submission
// per user: resubmission after rejection updates the row rather than adding
// another.
package submission

import (
	"context"
	"sync"

	"vouch/internal/verification/models"
	id "vouch/pkg/domain"
	"vouch/pkg/platform/sentinel"
)

// InMemoryStore keeps submissions in maps. Used in tests and when Postgres
// is not configured.
type InMemoryStore struct {
	mu     sync.RWMutex
	byID   map[id.SubmissionID]*models.Submission
	byUser map[id.UserID]id.SubmissionID

	// FailWith, when set, makes every read fail with the given error so
	// services can exercise the degrade-to-none path.
	FailWith error

	// Reads counts Find calls, letting tests assert that no lookup happened.
	Reads int
}

// NewInMemoryStore creates an empty submission store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:   make(map[id.SubmissionID]*models.Submission),
		byUser: make(map[id.UserID]id.SubmissionID),
	}
}

// Create inserts a new submission. Returns sentinel.ErrConflict when the
// user already has one.
func (s *InMemoryStore) Create(ctx context.Context, sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUser[sub.UserID]; exists {
		return sentinel.ErrConflict
	}

	copied := *sub
	s.byID[sub.ID] = &copied
	s.byUser[sub.UserID] = sub.ID
	return nil
}

// Update replaces an existing submission. Returns sentinel.ErrNotFound when
// it does not exist.
func (s *InMemoryStore) Update(ctx context.Context, sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[sub.ID]; !exists {
		return sentinel.ErrNotFound
	}

	copied := *sub
	s.byID[sub.ID] = &copied
	return nil
}

// FindByUser returns the user's submission, or sentinel.ErrNotFound.
func (s *InMemoryStore) FindByUser(ctx context.Context, userID id.UserID) (*models.Submission, error) {
	s.mu.Lock()
	s.Reads++
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.FailWith != nil {
		return nil, s.FailWith
	}

	subID, ok := s.byUser[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *s.byID[subID]
	return &copied, nil
}

// FindByID returns a submission by id, or sentinel.ErrNotFound.
func (s *InMemoryStore) FindByID(ctx context.Context, subID id.SubmissionID) (*models.Submission, error) {
	s.mu.Lock()
	s.Reads++
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.FailWith != nil {
		return nil, s.FailWith
	}

	sub, ok := s.byID[subID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *sub
	return &copied, nil
}
