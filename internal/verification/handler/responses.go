package handler

import (
	"time"

	"vouch/internal/verification/models"
	"vouch/internal/verification/service"
	"vouch/internal/verification/validate"
)

// FormResponse is the wizard state as the client renders it.
type FormResponse struct {
	CurrentStep   int                  `json:"current_step"`
	TotalSteps    int                  `json:"total_steps"`
	BusinessInfo  models.BusinessInfo  `json:"business_info"`
	OwnerIdentity models.OwnerIdentity `json:"owner_identity"`
	BusinessDocs  models.BusinessDocs  `json:"business_docs"`
	AgreedToTerms bool                 `json:"agreed_to_terms"`
	IsSubmitting  bool                 `json:"is_submitting"`
	SubmitError   string               `json:"submit_error,omitempty"`
	StepErrors    []string             `json:"step_errors"`
	CanGoNext     bool                 `json:"can_go_next"`
	CanGoPrev     bool                 `json:"can_go_prev"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// FromFormState converts a draft to an HTTP response, computing the
// navigation affordances for the current step.
func FromFormState(f *models.FormState) *FormResponse {
	stepErrors := validate.StepErrors(f.CurrentStep, f)
	if stepErrors == nil {
		stepErrors = []string{}
	}
	return &FormResponse{
		CurrentStep:   int(f.CurrentStep),
		TotalSteps:    models.TotalSteps,
		BusinessInfo:  f.BusinessInfo,
		OwnerIdentity: f.OwnerIdentity,
		BusinessDocs:  f.BusinessDocs,
		AgreedToTerms: f.AgreedToTerms,
		IsSubmitting:  f.IsSubmitting,
		SubmitError:   f.SubmitError,
		StepErrors:    stepErrors,
		CanGoNext:     f.CurrentStep < models.StepReview && len(stepErrors) == 0,
		CanGoPrev:     f.CurrentStep > models.StepBusinessInfo,
		UpdatedAt:     f.UpdatedAt,
	}
}

// DocumentResponse is an uploaded document as returned to the client.
type DocumentResponse struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	FileName   string    `json:"file_name"`
	FileURL    string    `json:"file_url"`
	FileSize   int64     `json:"file_size"`
	MimeType   string    `json:"mime_type"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func FromDocument(doc models.VerificationDocument) DocumentResponse {
	return DocumentResponse{
		ID:         doc.ID,
		Type:       string(doc.Type),
		FileName:   doc.FileName,
		FileURL:    doc.FileURL,
		FileSize:   doc.FileSize,
		MimeType:   doc.MimeType,
		UploadedAt: doc.UploadedAt,
	}
}

// UploadResponse is the HTTP response for POST /verification/documents.
type UploadResponse struct {
	Document DocumentResponse `json:"document"`
	Form     *FormResponse    `json:"form"`
}

// SubmissionResponse is a submission as seen by its owner and by reviewers.
type SubmissionResponse struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	BusinessName    string     `json:"business_name"`
	Status          string     `json:"status"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy      string     `json:"reviewed_by,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`

	BusinessInfo  models.BusinessInfo  `json:"business_info"`
	OwnerIdentity models.OwnerIdentity `json:"owner_identity"`
	BusinessDocs  models.BusinessDocs  `json:"business_docs"`
}

func FromSubmission(sub *models.Submission) *SubmissionResponse {
	return &SubmissionResponse{
		ID:              sub.ID.String(),
		UserID:          sub.UserID.String(),
		BusinessName:    sub.BusinessName,
		Status:          string(sub.Status),
		SubmittedAt:     sub.SubmittedAt,
		ReviewedAt:      sub.ReviewedAt,
		ReviewedBy:      sub.ReviewedBy,
		RejectionReason: sub.RejectionReason,
		BusinessInfo:    sub.BusinessInfo,
		OwnerIdentity:   sub.OwnerIdentity,
		BusinessDocs:    sub.BusinessDocs,
	}
}

// StatusResponse is the HTTP response for GET /verification/status. The
// submission block is absent while the status is none.
type StatusResponse struct {
	Status          string     `json:"status"`
	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
}

func FromStatus(result service.StatusResult) *StatusResponse {
	resp := &StatusResponse{Status: string(result.Status)}
	if sub := result.Submission; sub != nil {
		resp.SubmittedAt = &sub.SubmittedAt
		resp.ReviewedAt = sub.ReviewedAt
		resp.RejectionReason = sub.RejectionReason
	}
	return resp
}
