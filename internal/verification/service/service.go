// Package service orchestrates the submission lifecycle: validating the
// draft, snapshotting it into a submission, and tracking review outcomes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"vouch/internal/audit"
	"vouch/internal/verification/metrics"
	"vouch/internal/verification/models"
	"vouch/internal/verification/validate"
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/sentinel"
	"vouch/pkg/requestcontext"
)

var tracer = otel.Tracer("vouch/verification")

type SubmissionStore interface {
	Create(ctx context.Context, sub *models.Submission) error
	Update(ctx context.Context, sub *models.Submission) error
	FindByUser(ctx context.Context, userID id.UserID) (*models.Submission, error)
	FindByID(ctx context.Context, subID id.SubmissionID) (*models.Submission, error)
}

type DraftStore interface {
	Get(ctx context.Context, userID id.UserID) (*models.FormState, error)
	Put(ctx context.Context, f *models.FormState) error
}

// DocumentChecker verifies an uploaded document is still fetchable.
type DocumentChecker interface {
	Exists(ctx context.Context, url string) (bool, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, userID id.UserID, action string, metadata map[string]string)
}

// StatusCache is an optional read-side cache for Status lookups.
type StatusCache interface {
	Get(ctx context.Context, userID id.UserID) (*StatusResult, bool)
	Set(ctx context.Context, userID id.UserID, result StatusResult)
	Invalidate(ctx context.Context, userID id.UserID)
}

// StatusResult is what Status reports. Submission is nil when the status
// is none.
type StatusResult struct {
	Status     models.Status      `json:"status"`
	Submission *models.Submission `json:"submission,omitempty"`
}

// Service owns the submission side of verification. Draft editing lives in
// the form service; this one consumes drafts and produces submissions.
type Service struct {
	submissions SubmissionStore
	drafts      DraftStore
	documents   DocumentChecker
	audit       AuditPublisher
	cache       StatusCache
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.audit = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithDocumentChecker enables the pre-submit reachability check against the
// storage service.
func WithDocumentChecker(checker DocumentChecker) Option {
	return func(s *Service) {
		s.documents = checker
	}
}

// WithStatusCache enables the read-side status cache.
func WithStatusCache(cache StatusCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// New constructs a Service.
func New(submissions SubmissionStore, drafts DraftStore, opts ...Option) (*Service, error) {
	if submissions == nil {
		return nil, errors.New("submission store is required")
	}
	if drafts == nil {
		return nil, errors.New("draft store is required")
	}

	s := &Service{submissions: submissions, drafts: drafts}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s, nil
}

// Submit validates the user's draft and turns it into a pending submission.
// A rejected submission is resubmitted in place; pending and approved ones
// refuse another submit.
//
// Errors:
//   - CodeUnauthorized when no identity is present
//   - CodeValidation with the first failing step's messages when the draft
//     is incomplete, and when an uploaded document is no longer fetchable
//   - CodeConflict when a submission is already pending or approved
//   - CodeUnavailable when a backing store cannot be reached
func (s *Service) Submit(ctx context.Context, userID id.UserID) (*models.Submission, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "verification.submit")
	defer span.End()

	sub, err := s.submit(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, dErrors.MessageOf(err))
		if s.metrics != nil {
			s.metrics.SubmissionsRefused.Inc()
		}
		return nil, err
	}

	span.SetAttributes(
		attribute.String("submission.id", sub.ID.String()),
		attribute.String("submission.status", string(sub.Status)),
	)
	if s.metrics != nil {
		s.metrics.SubmissionsAccepted.Inc()
		s.metrics.ObserveSubmit(start)
	}
	return sub, nil
}

func (s *Service) submit(ctx context.Context, userID id.UserID) (*models.Submission, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	draft, err := s.loadDraft(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	draft.BeginSubmit(now)

	sub, err := s.trySubmit(ctx, userID, draft, now)
	if err != nil {
		// Record the failure on the draft so the wizard can surface it.
		// The draft write is best effort; the submit error wins.
		draft.FinishSubmit(dErrors.MessageOf(err), now)
		if putErr := s.drafts.Put(ctx, draft); putErr != nil {
			s.logger.Warn("persist draft after failed submit",
				"error", putErr, "user_id", userID)
		}
		return nil, err
	}

	draft.FinishSubmit("", now)
	if err := s.drafts.Put(ctx, draft); err != nil {
		s.logger.Warn("persist draft after submit", "error", err, "user_id", userID)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
	return sub, nil
}

// loadDraft fetches the wizard draft, seeding an empty one when the user
// has never opened the form. The empty draft then fails step-1 validation
// with the full message list instead of a bare not-found.
func (s *Service) loadDraft(ctx context.Context, userID id.UserID) (*models.FormState, error) {
	draft, err := s.drafts.Get(ctx, userID)
	if err == nil {
		return draft, nil
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.NewFormState(userID, requestcontext.Now(ctx)), nil
	}
	return nil, dErrors.Wrap(dErrors.CodeUnavailable, "draft store unavailable", err)
}

func (s *Service) trySubmit(ctx context.Context, userID id.UserID, draft *models.FormState, now time.Time) (*models.Submission, error) {
	if step, errs, ok := validate.FirstInvalidStep(draft); !ok {
		return nil, dErrors.Newf(dErrors.CodeValidation,
			"step %d is incomplete: %s", step, strings.Join(errs, "; "))
	}

	if err := s.checkDocuments(ctx, draft); err != nil {
		return nil, err
	}

	existing, err := s.submissions.FindByUser(ctx, userID)
	switch {
	case err == nil:
		return s.resubmit(ctx, existing, draft, now)
	case errors.Is(err, sentinel.ErrNotFound):
		return s.create(ctx, userID, draft, now)
	default:
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "submission store unavailable", err)
	}
}

func (s *Service) create(ctx context.Context, userID id.UserID, draft *models.FormState, now time.Time) (*models.Submission, error) {
	sub := models.NewSubmission(draft, now)
	sub.SubmitterIP = requestcontext.ClientIP(ctx)
	sub.SubmitterUserAgent = requestcontext.UserAgent(ctx)

	if err := s.submissions.Create(ctx, sub); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Raced with another submit for the same user.
			return nil, dErrors.New(dErrors.CodeConflict, "a submission already exists")
		}
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "submission store unavailable", err)
	}

	s.logger.Info("submission created",
		"submission_id", sub.ID,
		"user_id", userID,
		"business_name", sub.BusinessName,
	)
	if s.audit != nil {
		s.audit.Emit(ctx, userID, audit.ActionSubmissionCreated, map[string]string{
			"submission_id": sub.ID.String(),
		})
	}
	return sub, nil
}

func (s *Service) resubmit(ctx context.Context, existing *models.Submission, draft *models.FormState, now time.Time) (*models.Submission, error) {
	switch existing.Status {
	case models.StatusPending:
		return nil, dErrors.New(dErrors.CodeConflict, "a submission is already under review")
	case models.StatusApproved:
		return nil, dErrors.New(dErrors.CodeConflict, "this business is already verified")
	}

	if err := existing.CanResubmit(); err != nil {
		return nil, err
	}
	existing.ApplyResubmission(draft, now)
	existing.SubmitterIP = requestcontext.ClientIP(ctx)
	existing.SubmitterUserAgent = requestcontext.UserAgent(ctx)

	if err := s.submissions.Update(ctx, existing); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "submission store unavailable", err)
	}

	s.logger.Info("submission resubmitted",
		"submission_id", existing.ID,
		"user_id", existing.UserID,
	)
	if s.audit != nil {
		s.audit.Emit(ctx, existing.UserID, audit.ActionSubmissionResent, map[string]string{
			"submission_id": existing.ID.String(),
		})
	}
	return existing, nil
}

// checkDocuments verifies every referenced document in parallel. Skipped
// when no checker is configured.
func (s *Service) checkDocuments(ctx context.Context, draft *models.FormState) error {
	if s.documents == nil {
		return nil
	}

	docs := models.NewSubmission(draft, requestcontext.Now(ctx)).Documents()
	g, gctx := errgroup.WithContext(ctx)
	for _, doc := range docs {
		g.Go(func() error {
			ok, err := s.documents.Exists(gctx, doc.FileURL)
			if err != nil {
				return dErrors.Wrap(dErrors.CodeUnavailable, "document storage unavailable", err)
			}
			if !ok {
				return dErrors.Newf(dErrors.CodeValidation,
					"document %q is no longer available, upload it again", doc.FileName)
			}
			return nil
		})
	}
	return g.Wait()
}

// Status reports the user's verification status. A missing identity or a
// missing submission both read as none.
//
// When the store cannot be reached the status degrades to none and the
// error is returned alongside so callers can tell "not submitted" from
// "unknown".
func (s *Service) Status(ctx context.Context, userID id.UserID) (StatusResult, error) {
	none := StatusResult{Status: models.StatusNone}
	if userID.IsNil() {
		return none, nil
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, userID); ok {
			return *cached, nil
		}
	}

	sub, err := s.submissions.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.cacheResult(ctx, userID, none)
			return none, nil
		}
		if s.metrics != nil {
			s.metrics.StatusFetchFailures.Inc()
		}
		s.logger.Error("status lookup failed", "error", err, "user_id", userID)
		return none, dErrors.Wrap(dErrors.CodeUnavailable, "verification status is temporarily unavailable", err)
	}

	result := StatusResult{Status: sub.Status, Submission: sub}
	s.cacheResult(ctx, userID, result)
	return result, nil
}

func (s *Service) cacheResult(ctx context.Context, userID id.UserID, result StatusResult) {
	if s.cache != nil {
		s.cache.Set(ctx, userID, result)
	}
}

// FindSubmission returns a submission by id, for the review surface.
func (s *Service) FindSubmission(ctx context.Context, subID id.SubmissionID) (*models.Submission, error) {
	sub, err := s.submissions.FindByID(ctx, subID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "submission not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "submission store unavailable", err)
	}
	return sub, nil
}

// Approve marks a pending submission approved. Approved is terminal.
func (s *Service) Approve(ctx context.Context, subID id.SubmissionID, reviewer string) (*models.Submission, error) {
	return s.review(ctx, subID, audit.ActionSubmissionApproved, func(sub *models.Submission, now time.Time) error {
		if err := sub.Approve(reviewer, now); err != nil {
			return err
		}
		if s.metrics != nil {
			s.metrics.ReviewsApproved.Inc()
		}
		return nil
	})
}

// Reject marks a pending submission rejected with a reason the owner will
// see. The owner can edit the draft and resubmit.
func (s *Service) Reject(ctx context.Context, subID id.SubmissionID, reviewer, reason string) (*models.Submission, error) {
	return s.review(ctx, subID, audit.ActionSubmissionRejected, func(sub *models.Submission, now time.Time) error {
		if err := sub.Reject(reviewer, reason, now); err != nil {
			return err
		}
		if s.metrics != nil {
			s.metrics.ReviewsRejected.Inc()
		}
		return nil
	})
}

func (s *Service) review(ctx context.Context, subID id.SubmissionID, action string, apply func(sub *models.Submission, now time.Time) error) (*models.Submission, error) {
	sub, err := s.submissions.FindByID(ctx, subID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "submission not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "submission store unavailable", err)
	}

	now := requestcontext.Now(ctx)
	if err := apply(sub, now); err != nil {
		return nil, err
	}

	if err := s.submissions.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("persist review: %w", err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, sub.UserID)
	}
	s.logger.Info("submission reviewed",
		"submission_id", sub.ID,
		"user_id", sub.UserID,
		"status", sub.Status,
		"reviewed_by", sub.ReviewedBy,
	)
	if s.audit != nil {
		s.audit.Emit(ctx, sub.UserID, action, map[string]string{
			"submission_id": sub.ID.String(),
			"reviewed_by":   sub.ReviewedBy,
		})
	}
	return sub, nil
}
