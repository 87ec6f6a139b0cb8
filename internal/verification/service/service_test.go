package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"vouch/internal/audit"
	"vouch/internal/storage"
	"vouch/internal/verification/form"
	"vouch/internal/verification/models"
	submissionStore "vouch/internal/verification/store/submission"
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/requestcontext"
)

// =============================================================================
// Submission Service Test Suite
// =============================================================================
// Justification for unit tests: the submit path combines draft validation,
// one-live-submission enforcement, and resubmission semantics. Exercising
// every refusal branch over HTTP would need a full wizard walkthrough per
// case.

type SubmissionServiceSuite struct {
	suite.Suite
	submissions *submissionStore.InMemoryStore
	drafts      *form.InMemoryStore
	documents   *storage.InMemory
	auditStore  *audit.InMemoryStore
	service     *Service

	userID id.UserID
	now    time.Time
}

func TestSubmissionServiceSuite(t *testing.T) {
	suite.Run(t, new(SubmissionServiceSuite))
}

func (s *SubmissionServiceSuite) SetupTest() {
	s.submissions = submissionStore.NewInMemoryStore()
	s.drafts = form.NewInMemoryStore()
	s.documents = storage.NewInMemory()
	s.auditStore = audit.NewInMemoryStore()

	var err error
	s.service, err = New(s.submissions, s.drafts,
		WithDocumentChecker(s.documents),
		WithAuditPublisher(audit.NewPublisher(s.auditStore, nil, nil)),
	)
	s.Require().NoError(err)

	s.userID = id.UserID(uuid.MustParse("11111111-1111-1111-1111-111111111111"))
	s.now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
}

func (s *SubmissionServiceSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

// seedDraft stores a draft that passes every step.
func (s *SubmissionServiceSuite) seedDraft() *models.FormState {
	draft := s.completeDraft()
	s.Require().NoError(s.drafts.Put(context.Background(), draft))
	return draft
}

func (s *SubmissionServiceSuite) completeDraft() *models.FormState {
	draft := models.NewFormState(s.userID, s.now)
	draft.BusinessInfo.BusinessName = "Shear Genius"
	draft.BusinessInfo.BusinessAddress = "12 High St"
	draft.BusinessInfo.City = "Portland"
	draft.BusinessInfo.State = "OR"
	draft.BusinessInfo.ZipCode = "97201"

	draft.OwnerIdentity.OwnerFullName = "Robin Marsh"
	idFront := s.uploadDoc(models.DocumentTypeOwnerIDFront, "id-front.jpg")
	draft.OwnerIdentity.OwnerIDFront = &idFront

	license := s.uploadDoc(models.DocumentTypeBusinessLicense, "license.pdf")
	draft.BusinessDocs.BusinessLicense = &license

	draft.AgreedToTerms = true
	return draft
}

// uploadDoc stores a file in the in-memory uploader so the reachability
// check passes.
func (s *SubmissionServiceSuite) uploadDoc(docType models.DocumentType, name string) models.VerificationDocument {
	url, err := s.documents.Upload(context.Background(), storage.File{
		Name:    name,
		Content: strings.NewReader("content of " + name),
	}, string(docType))
	s.Require().NoError(err)
	return models.NewVerificationDocument(docType, name, url, 1024, "image/jpeg", s.now)
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *SubmissionServiceSuite) TestNew() {
	s.Run("nil submission store returns error", func() {
		_, err := New(nil, s.drafts)
		s.Error(err)
		s.Contains(err.Error(), "submission store is required")
	})

	s.Run("nil draft store returns error", func() {
		_, err := New(s.submissions, nil)
		s.Error(err)
		s.Contains(err.Error(), "draft store is required")
	})
}

// =============================================================================
// Submit Tests
// =============================================================================

func (s *SubmissionServiceSuite) TestSubmit() {
	s.Run("complete draft becomes a pending submission", func() {
		s.SetupTest()
		s.seedDraft()

		sub, err := s.service.Submit(s.ctx(), s.userID)
		s.Require().NoError(err)

		s.Equal(models.StatusPending, sub.Status)
		s.Equal(s.userID, sub.UserID)
		s.Equal("Shear Genius", sub.BusinessName)
		s.Equal(s.now, sub.SubmittedAt)
		s.Nil(sub.ReviewedAt)

		stored, err := s.submissions.FindByUser(context.Background(), s.userID)
		s.Require().NoError(err)
		s.Equal(sub.ID, stored.ID)
	})

	s.Run("submission snapshots the draft buckets", func() {
		s.SetupTest()
		draft := s.seedDraft()

		sub, err := s.service.Submit(s.ctx(), s.userID)
		s.Require().NoError(err)
		s.Equal(draft.BusinessInfo, sub.BusinessInfo)
		s.Equal(draft.OwnerIdentity, sub.OwnerIdentity)
		s.Equal(draft.BusinessDocs, sub.BusinessDocs)
	})

	s.Run("captures submitter metadata from the request", func() {
		s.SetupTest()
		s.seedDraft()
		ctx := requestcontext.WithClientMetadata(s.ctx(), "203.0.113.9", "Mozilla/5.0")

		sub, err := s.service.Submit(ctx, s.userID)
		s.Require().NoError(err)
		s.Equal("203.0.113.9", sub.SubmitterIP)
		s.Equal("Mozilla/5.0", sub.SubmitterUserAgent)
	})

	s.Run("nil identity is unauthorized", func() {
		s.SetupTest()
		_, err := s.service.Submit(s.ctx(), id.UserID{})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("incomplete draft is refused at the first invalid step", func() {
		s.SetupTest()
		draft := s.completeDraft()
		draft.OwnerIdentity.OwnerIDFront = nil
		s.Require().NoError(s.drafts.Put(context.Background(), draft))

		_, err := s.service.Submit(s.ctx(), s.userID)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "step 2")
		s.Contains(err.Error(), "Owner ID (front) is required")

		_, findErr := s.submissions.FindByUser(context.Background(), s.userID)
		s.Error(findErr, "no submission row written on refusal")
	})

	s.Run("empty draft fails at step 1 with every required field", func() {
		s.SetupTest()

		_, err := s.service.Submit(s.ctx(), s.userID)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "step 1")
		s.Contains(err.Error(), "Business name is required")
		s.Contains(err.Error(), "ZIP code is required")
	})

	s.Run("refusal is recorded on the draft", func() {
		s.SetupTest()
		draft := s.completeDraft()
		draft.AgreedToTerms = false
		s.Require().NoError(s.drafts.Put(context.Background(), draft))

		_, err := s.service.Submit(s.ctx(), s.userID)
		s.Require().Error(err)

		stored, getErr := s.drafts.Get(context.Background(), s.userID)
		s.Require().NoError(getErr)
		s.False(stored.IsSubmitting)
		s.Contains(stored.SubmitError, "You must agree to the terms to submit")
	})

	s.Run("missing stored document is refused", func() {
		s.SetupTest()
		draft := s.completeDraft()
		gone := models.NewVerificationDocument(
			models.DocumentTypeBusinessLicense, "license.pdf",
			"memory://documents/deleted", 1024, "application/pdf", s.now)
		draft.BusinessDocs.BusinessLicense = &gone
		s.Require().NoError(s.drafts.Put(context.Background(), draft))

		_, err := s.service.Submit(s.ctx(), s.userID)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "no longer available")
	})

	s.Run("pending submission refuses another submit", func() {
		s.SetupTest()
		s.seedDraft()
		_, err := s.service.Submit(s.ctx(), s.userID)
		s.Require().NoError(err)

		_, err = s.service.Submit(s.ctx(), s.userID)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Contains(err.Error(), "under review")
	})

	s.Run("approved submission refuses another submit", func() {
		s.SetupTest()
		s.seedDraft()
		sub, err := s.service.Submit(s.ctx(), s.userID)
		s.Require().NoError(err)
		_, err = s.service.Approve(s.ctx(), sub.ID, "reviewer@vouch")
		s.Require().NoError(err)

		_, err = s.service.Submit(s.ctx(), s.userID)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Contains(err.Error(), "already verified")
	})

	s.Run("emits an audit event", func() {
		s.SetupTest()
		s.seedDraft()
		_, err := s.service.Submit(s.ctx(), s.userID)
		s.Require().NoError(err)

		events, err := s.auditStore.ListByUser(context.Background(), s.userID)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(audit.ActionSubmissionCreated, events[0].Action)
	})
}

// =============================================================================
// Resubmission Tests
// =============================================================================

func (s *SubmissionServiceSuite) TestResubmit() {
	s.Run("rejected submission can be resubmitted with fresh data", func() {
		s.SetupTest()
		s.seedDraft()
		first, err := s.service.Submit(s.ctx(), s.userID)
		s.Require().NoError(err)

		_, err = s.service.Reject(s.ctx(), first.ID, "reviewer@vouch", "license is expired")
		s.Require().NoError(err)

		// Owner fixes the draft and tries again.
		draft, err := s.drafts.Get(context.Background(), s.userID)
		s.Require().NoError(err)
		license := s.uploadDoc(models.DocumentTypeBusinessLicense, "license-renewed.pdf")
		draft.BusinessDocs.BusinessLicense = &license
		s.Require().NoError(s.drafts.Put(context.Background(), draft))

		later := s.now.Add(48 * time.Hour)
		second, err := s.service.Submit(requestcontext.WithTime(context.Background(), later), s.userID)
		s.Require().NoError(err)

		s.Equal(first.ID, second.ID, "resubmission reuses the same record")
		s.Equal(models.StatusPending, second.Status)
		s.Equal(later, second.SubmittedAt)
		s.Equal("license-renewed.pdf", second.BusinessDocs.BusinessLicense.FileName)
		s.Nil(second.ReviewedAt)
		s.Empty(second.RejectionReason)
	})
}

// =============================================================================
// Status Tests
// =============================================================================

func (s *SubmissionServiceSuite) TestStatus() {
	s.Run("nil identity reads as none without touching the store", func() {
		s.SetupTest()
		result, err := s.service.Status(s.ctx(), id.UserID{})
		s.NoError(err)
		s.Equal(models.StatusNone, result.Status)
		s.Nil(result.Submission)
		s.Zero(s.submissions.Reads)
	})

	s.Run("no submission reads as none", func() {
		s.SetupTest()
		result, err := s.service.Status(s.ctx(), s.userID)
		s.NoError(err)
		s.Equal(models.StatusNone, result.Status)
	})

	s.Run("follows the review lifecycle", func() {
		s.SetupTest()
		s.seedDraft()
		sub, err := s.service.Submit(s.ctx(), s.userID)
		s.Require().NoError(err)

		result, err := s.service.Status(s.ctx(), s.userID)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, result.Status)

		_, err = s.service.Approve(s.ctx(), sub.ID, "reviewer@vouch")
		s.Require().NoError(err)

		result, err = s.service.Status(s.ctx(), s.userID)
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, result.Status)
		s.Require().NotNil(result.Submission)
		s.Equal("reviewer@vouch", result.Submission.ReviewedBy)
	})

	s.Run("store failure degrades to none with an error", func() {
		s.SetupTest()
		s.submissions.FailWith = errors.New("connection refused")

		result, err := s.service.Status(s.ctx(), s.userID)
		s.Equal(models.StatusNone, result.Status)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}

// =============================================================================
// Review Tests
// =============================================================================

func (s *SubmissionServiceSuite) TestReview() {
	s.Run("approve stamps reviewer and time", func() {
		s.SetupTest()
		s.seedDraft()
		sub, err := s.service.Submit(s.ctx(), s.userID)
		s.Require().NoError(err)

		reviewedAt := s.now.Add(time.Hour)
		approved, err := s.service.Approve(
			requestcontext.WithTime(context.Background(), reviewedAt), sub.ID, "reviewer@vouch")
		s.Require().NoError(err)

		s.Equal(models.StatusApproved, approved.Status)
		s.Equal("reviewer@vouch", approved.ReviewedBy)
		s.Require().NotNil(approved.ReviewedAt)
		s.Equal(reviewedAt, *approved.ReviewedAt)
	})

	s.Run("reject requires a reason", func() {
		s.SetupTest()
		s.seedDraft()
		sub, err := s.service.Submit(s.ctx(), s.userID)
		s.Require().NoError(err)

		_, err = s.service.Reject(s.ctx(), sub.ID, "reviewer@vouch", "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("reject stores the reason for the owner", func() {
		s.SetupTest()
		s.seedDraft()
		sub, err := s.service.Submit(s.ctx(), s.userID)
		s.Require().NoError(err)

		rejected, err := s.service.Reject(s.ctx(), sub.ID, "reviewer@vouch", "address does not match the license")
		s.Require().NoError(err)
		s.Equal(models.StatusRejected, rejected.Status)
		s.Equal("address does not match the license", rejected.RejectionReason)
	})

	s.Run("approved is terminal", func() {
		s.SetupTest()
		s.seedDraft()
		sub, err := s.service.Submit(s.ctx(), s.userID)
		s.Require().NoError(err)
		_, err = s.service.Approve(s.ctx(), sub.ID, "reviewer@vouch")
		s.Require().NoError(err)

		_, err = s.service.Reject(s.ctx(), sub.ID, "reviewer@vouch", "changed my mind")
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("unknown submission is not found", func() {
		s.SetupTest()
		_, err := s.service.Approve(s.ctx(), id.SubmissionID(uuid.New()), "reviewer@vouch")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
