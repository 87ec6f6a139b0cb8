// Package form owns the wizard state machine: one draft per user, four
// steps, guarded navigation, and whole-bucket updates.
package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"vouch/internal/verification/models"
	"vouch/internal/verification/validate"
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/sentinel"
	"vouch/pkg/requestcontext"
)

// Service orchestrates draft reads and mutations. The identity is always an
// explicit argument; nothing here reaches into ambient session state.
type Service struct {
	store  Store
	logger *slog.Logger
}

// New constructs the form service.
func New(store Store, logger *slog.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.New("form store is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{store: store, logger: logger}, nil
}

// Get returns the user's draft, creating a fresh one at step 1 on first
// access.
func (s *Service) Get(ctx context.Context, userID id.UserID) (*models.FormState, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return s.load(ctx, userID)
}

// UpdateBusinessInfo merges a step-1 patch. Navigation is untouched.
func (s *Service) UpdateBusinessInfo(ctx context.Context, userID id.UserID, patch models.BusinessInfoPatch) (*models.FormState, error) {
	return s.mutate(ctx, userID, func(f *models.FormState) error {
		return f.ApplyBusinessInfo(patch, requestcontext.Now(ctx))
	})
}

// UpdateOwnerIdentity merges a step-2 patch. Navigation is untouched.
func (s *Service) UpdateOwnerIdentity(ctx context.Context, userID id.UserID, patch models.OwnerIdentityPatch) (*models.FormState, error) {
	return s.mutate(ctx, userID, func(f *models.FormState) error {
		f.ApplyOwnerIdentity(patch, requestcontext.Now(ctx))
		return nil
	})
}

// AttachDocument applies a completed upload to its slot. Certifications are
// appended; every other type replaces its slot, so when two uploads for the
// same slot race, the one applied last wins deterministically.
func (s *Service) AttachDocument(ctx context.Context, userID id.UserID, doc models.VerificationDocument) (*models.FormState, error) {
	return s.mutate(ctx, userID, func(f *models.FormState) error {
		now := requestcontext.Now(ctx)
		if doc.Type == models.DocumentTypeCertification {
			return f.AddCertification(doc, now)
		}
		return f.SetDocument(doc, now)
	})
}

// RemoveDocument clears a document slot.
func (s *Service) RemoveDocument(ctx context.Context, userID id.UserID, docType models.DocumentType) (*models.FormState, error) {
	return s.mutate(ctx, userID, func(f *models.FormState) error {
		return f.RemoveDocument(docType, requestcontext.Now(ctx))
	})
}

// RemoveCertification filters the certification list by document id. Removing
// an id that is not present is a no-op, matching list-filter semantics.
func (s *Service) RemoveCertification(ctx context.Context, userID id.UserID, docID string) (*models.FormState, error) {
	return s.mutate(ctx, userID, func(f *models.FormState) error {
		f.RemoveCertification(docID, requestcontext.Now(ctx))
		return nil
	})
}

// SetAgreedToTerms records the step-4 consent checkbox.
func (s *Service) SetAgreedToTerms(ctx context.Context, userID id.UserID, agreed bool) (*models.FormState, error) {
	return s.mutate(ctx, userID, func(f *models.FormState) error {
		f.SetAgreedToTerms(agreed, requestcontext.Now(ctx))
		return nil
	})
}

// GoToStep jumps to a step directly. Only bounds are checked so the review
// step can link back to any earlier step for edits.
func (s *Service) GoToStep(ctx context.Context, userID id.UserID, step models.Step) (*models.FormState, error) {
	return s.mutate(ctx, userID, func(f *models.FormState) error {
		return f.GoToStep(step, requestcontext.Now(ctx))
	})
}

// NextStep advances by one step. Refused while the current step is invalid
// or the wizard is already on the review step.
//
// Errors: CodeValidation with the current step's error list when the step is
// incomplete.
func (s *Service) NextStep(ctx context.Context, userID id.UserID) (*models.FormState, error) {
	return s.mutate(ctx, userID, func(f *models.FormState) error {
		if f.CurrentStep >= models.StepReview {
			return dErrors.New(dErrors.CodeValidation, "already on the last step")
		}
		if errs := validate.StepErrors(f.CurrentStep, f); len(errs) > 0 {
			return dErrors.Newf(dErrors.CodeValidation,
				"step %d is incomplete: %s", f.CurrentStep, strings.Join(errs, "; "))
		}
		f.Advance(requestcontext.Now(ctx))
		return nil
	})
}

// PrevStep retreats by one step, floored at step 1. Never guarded.
func (s *Service) PrevStep(ctx context.Context, userID id.UserID) (*models.FormState, error) {
	return s.mutate(ctx, userID, func(f *models.FormState) error {
		f.Retreat(requestcontext.Now(ctx))
		return nil
	})
}

// load fetches the draft or seeds a new one.
func (s *Service) load(ctx context.Context, userID id.UserID) (*models.FormState, error) {
	draft, err := s.store.Get(ctx, userID)
	if err == nil {
		return draft, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, fmt.Errorf("load draft: %w", err)
	}

	draft = models.NewFormState(userID, requestcontext.Now(ctx))
	if err := s.store.Put(ctx, draft); err != nil {
		return nil, fmt.Errorf("seed draft: %w", err)
	}
	return draft, nil
}

// mutate runs a draft mutation and persists the result as a whole-aggregate
// replace.
func (s *Service) mutate(ctx context.Context, userID id.UserID, fn func(f *models.FormState) error) (*models.FormState, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	draft, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := fn(draft); err != nil {
		return nil, err
	}

	if err := s.store.Put(ctx, draft); err != nil {
		return nil, fmt.Errorf("persist draft: %w", err)
	}
	return draft, nil
}
