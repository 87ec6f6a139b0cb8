package form

import (
	"context"

	"vouch/internal/verification/models"
	id "vouch/pkg/domain"
)

// Store persists wizard drafts keyed by user. Writes replace the whole
// aggregate so two handlers firing close together cannot interleave partial
// bucket updates.
type Store interface {
	// Get returns the draft for a user, or sentinel.ErrNotFound.
	Get(ctx context.Context, userID id.UserID) (*models.FormState, error)
	// Put replaces the draft.
	Put(ctx context.Context, f *models.FormState) error
	// Delete removes the draft, e.g. after approval.
	Delete(ctx context.Context, userID id.UserID) error
}
