package models

import (
	"time"

	"github.com/google/uuid"

	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
)

// Submission is the persisted server-side record created when the wizard is
// submitted.
//
// Invariants:
//   - Created with Status pending; mutated only by the review process
//     (approve/reject) and by resubmission after a rejection
//   - Approved is terminal
//   - One live submission per user
//
// The three form buckets are snapshotted at submit time so a reviewer sees
// exactly what the owner sent, regardless of later draft edits.
type Submission struct {
	ID           id.SubmissionID `json:"id"`
	UserID       id.UserID       `json:"user_id"`
	BusinessName string          `json:"business_name"`

	BusinessInfo  BusinessInfo  `json:"business_info"`
	OwnerIdentity OwnerIdentity `json:"owner_identity"`
	BusinessDocs  BusinessDocs  `json:"business_docs"`

	Status          Status     `json:"status"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy      string     `json:"reviewed_by,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`

	// Submitter metadata, captured for the audit trail.
	SubmitterIP        string `json:"submitter_ip,omitempty"`
	SubmitterUserAgent string `json:"submitter_user_agent,omitempty"`
}

// NewSubmission snapshots a form into a pending submission.
func NewSubmission(f *FormState, now time.Time) *Submission {
	snapshot := f.Clone()
	return &Submission{
		ID:            id.SubmissionID(uuid.New()),
		UserID:        f.UserID,
		BusinessName:  snapshot.BusinessInfo.BusinessName,
		BusinessInfo:  snapshot.BusinessInfo,
		OwnerIdentity: snapshot.OwnerIdentity,
		BusinessDocs:  snapshot.BusinessDocs,
		Status:        StatusPending,
		SubmittedAt:   now,
	}
}

// CanApprove checks if the submission can transition to approved.
func (s *Submission) CanApprove() error {
	if !s.Status.CanTransitionTo(StatusApproved) {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "cannot approve a submission in status %q", s.Status)
	}
	return nil
}

// ApplyApproval transitions the submission to approved.
// Call CanApprove first to validate the transition.
func (s *Submission) ApplyApproval(reviewer string, now time.Time) {
	s.Status = StatusApproved
	s.ReviewedAt = &now
	s.ReviewedBy = reviewer
	s.RejectionReason = ""
}

// Approve validates and applies approval in one call.
func (s *Submission) Approve(reviewer string, now time.Time) error {
	if err := s.CanApprove(); err != nil {
		return err
	}
	s.ApplyApproval(reviewer, now)
	return nil
}

// CanReject checks if the submission can transition to rejected.
func (s *Submission) CanReject(reason string) error {
	if reason == "" {
		return dErrors.New(dErrors.CodeValidation, "a rejection reason is required")
	}
	if !s.Status.CanTransitionTo(StatusRejected) {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "cannot reject a submission in status %q", s.Status)
	}
	return nil
}

// ApplyRejection transitions the submission to rejected.
// Call CanReject first to validate the transition.
func (s *Submission) ApplyRejection(reviewer, reason string, now time.Time) {
	s.Status = StatusRejected
	s.ReviewedAt = &now
	s.ReviewedBy = reviewer
	s.RejectionReason = reason
}

// Reject validates and applies rejection in one call.
func (s *Submission) Reject(reviewer, reason string, now time.Time) error {
	if err := s.CanReject(reason); err != nil {
		return err
	}
	s.ApplyRejection(reviewer, reason, now)
	return nil
}

// CanResubmit checks if a rejected submission can go back to pending.
func (s *Submission) CanResubmit() error {
	if !s.Status.CanTransitionTo(StatusPending) {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "cannot resubmit a submission in status %q", s.Status)
	}
	return nil
}

// ApplyResubmission replaces the snapshot with the current form and flips the
// submission back to pending, clearing the review fields.
// Call CanResubmit first to validate the transition.
func (s *Submission) ApplyResubmission(f *FormState, now time.Time) {
	snapshot := f.Clone()
	s.BusinessName = snapshot.BusinessInfo.BusinessName
	s.BusinessInfo = snapshot.BusinessInfo
	s.OwnerIdentity = snapshot.OwnerIdentity
	s.BusinessDocs = snapshot.BusinessDocs
	s.Status = StatusPending
	s.SubmittedAt = now
	s.ReviewedAt = nil
	s.ReviewedBy = ""
	s.RejectionReason = ""
}

// Documents lists every document attached to the submission, required and
// optional alike.
func (s *Submission) Documents() []VerificationDocument {
	var docs []VerificationDocument
	if s.OwnerIdentity.OwnerIDFront != nil {
		docs = append(docs, *s.OwnerIdentity.OwnerIDFront)
	}
	if s.OwnerIdentity.OwnerIDBack != nil {
		docs = append(docs, *s.OwnerIdentity.OwnerIDBack)
	}
	if s.BusinessDocs.BusinessLicense != nil {
		docs = append(docs, *s.BusinessDocs.BusinessLicense)
	}
	docs = append(docs, s.BusinessDocs.Certifications...)
	if s.BusinessDocs.Insurance != nil {
		docs = append(docs, *s.BusinessDocs.Insurance)
	}
	if s.BusinessDocs.TaxDocument != nil {
		docs = append(docs, *s.BusinessDocs.TaxDocument)
	}
	return docs
}
