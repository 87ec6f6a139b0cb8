// Package handler wires the verification wizard and submission endpoints to
// the form and submission services.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vouch/internal/audit"
	"vouch/internal/verification/metrics"
	"vouch/internal/verification/models"
	"vouch/internal/verification/service"
	"vouch/internal/verification/upload"
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/httputil"
	"vouch/pkg/requestcontext"
)

// FormService covers the draft wizard operations.
type FormService interface {
	Get(ctx context.Context, userID id.UserID) (*models.FormState, error)
	UpdateBusinessInfo(ctx context.Context, userID id.UserID, patch models.BusinessInfoPatch) (*models.FormState, error)
	UpdateOwnerIdentity(ctx context.Context, userID id.UserID, patch models.OwnerIdentityPatch) (*models.FormState, error)
	AttachDocument(ctx context.Context, userID id.UserID, doc models.VerificationDocument) (*models.FormState, error)
	RemoveDocument(ctx context.Context, userID id.UserID, docType models.DocumentType) (*models.FormState, error)
	RemoveCertification(ctx context.Context, userID id.UserID, docID string) (*models.FormState, error)
	SetAgreedToTerms(ctx context.Context, userID id.UserID, agreed bool) (*models.FormState, error)
	GoToStep(ctx context.Context, userID id.UserID, step models.Step) (*models.FormState, error)
	NextStep(ctx context.Context, userID id.UserID) (*models.FormState, error)
	PrevStep(ctx context.Context, userID id.UserID) (*models.FormState, error)
}

// SubmissionService covers submit, status, and review.
type SubmissionService interface {
	Submit(ctx context.Context, userID id.UserID) (*models.Submission, error)
	Status(ctx context.Context, userID id.UserID) (service.StatusResult, error)
	Approve(ctx context.Context, subID id.SubmissionID, reviewer string) (*models.Submission, error)
	Reject(ctx context.Context, subID id.SubmissionID, reviewer, reason string) (*models.Submission, error)
	FindSubmission(ctx context.Context, subID id.SubmissionID) (*models.Submission, error)
}

// AuditPublisher records who uploaded what. Optional; nil disables audit.
type AuditPublisher interface {
	Emit(ctx context.Context, userID id.UserID, action string, metadata map[string]string)
}

// Handler wires verification endpoints to the services.
type Handler struct {
	forms       FormService
	submissions SubmissionService
	pipeline    *upload.Pipeline
	audit       AuditPublisher
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// New constructs a verification handler with its dependencies.
func New(forms FormService, submissions SubmissionService, pipeline *upload.Pipeline, auditPublisher AuditPublisher, logger *slog.Logger, m *metrics.Metrics) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		forms:       forms,
		submissions: submissions,
		pipeline:    pipeline,
		audit:       auditPublisher,
		logger:      logger,
		metrics:     m,
	}
}

// Register mounts the owner-facing endpoints. The router must run the auth
// middleware first.
func (h *Handler) Register(r chi.Router) {
	r.Get("/verification/form", h.HandleGetForm)
	r.Post("/verification/form/business-info", h.HandleBusinessInfo)
	r.Post("/verification/form/owner-identity", h.HandleOwnerIdentity)
	r.Post("/verification/form/business-docs", h.HandleBusinessDocs)
	r.Delete("/verification/form/certifications/{documentID}", h.HandleRemoveCertification)
	r.Post("/verification/form/terms", h.HandleTerms)
	r.Post("/verification/form/step", h.HandleStep)
	r.Post("/verification/documents", h.HandleUpload)
	r.Post("/verification/submit", h.HandleSubmit)
	r.Get("/verification/status", h.HandleStatus)
}

// RegisterAdmin mounts the review endpoints. The router must gate these with
// the admin token middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/verification/submissions/{submissionID}", h.HandleGetSubmission)
	r.Post("/verification/submissions/{submissionID}/approve", h.HandleApprove)
	r.Post("/verification/submissions/{submissionID}/reject", h.HandleReject)
}

func (h *Handler) HandleGetForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	draft, err := h.forms.Get(ctx, userID)
	if err != nil {
		h.writeFormError(w, ctx, "load form", userID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromFormState(draft))
}

func (h *Handler) HandleBusinessInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[BusinessInfoRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	draft, err := h.forms.UpdateBusinessInfo(ctx, userID, req.Patch())
	if err != nil {
		h.writeFormError(w, ctx, "update business info", userID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromFormState(draft))
}

func (h *Handler) HandleOwnerIdentity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[OwnerIdentityRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	draft, err := h.forms.UpdateOwnerIdentity(ctx, userID, req.Patch())
	if err != nil {
		h.writeFormError(w, ctx, "update owner identity", userID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromFormState(draft))
}

func (h *Handler) HandleBusinessDocs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[BusinessDocsRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	draft, err := h.forms.RemoveDocument(ctx, userID, req.RemoveType())
	if err != nil {
		h.writeFormError(w, ctx, "remove document", userID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromFormState(draft))
}

func (h *Handler) HandleRemoveCertification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	docID := chi.URLParam(r, "documentID")
	if docID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "document id is required"))
		return
	}

	draft, err := h.forms.RemoveCertification(ctx, userID, docID)
	if err != nil {
		h.writeFormError(w, ctx, "remove certification", userID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromFormState(draft))
}

func (h *Handler) HandleTerms(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[TermsRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	draft, err := h.forms.SetAgreedToTerms(ctx, userID, *req.AgreedToTerms)
	if err != nil {
		h.writeFormError(w, ctx, "set terms", userID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromFormState(draft))
}

func (h *Handler) HandleStep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[StepRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	var (
		draft *models.FormState
		err   error
	)
	switch req.Action {
	case stepActionNext:
		draft, err = h.forms.NextStep(ctx, userID)
	case stepActionPrev:
		draft, err = h.forms.PrevStep(ctx, userID)
	default:
		draft, err = h.forms.GoToStep(ctx, userID, models.Step(req.Step))
	}
	if err != nil {
		h.writeFormError(w, ctx, "navigate", userID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromFormState(draft))
}

// HandleUpload handles POST /verification/documents. Multipart fields:
// document_type and file. The pipeline validates and stores the file; the
// resulting document is applied to the draft, appending for certifications
// and replacing the slot for everything else.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(h.pipeline.MaxSize()); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form"))
		return
	}

	docType, err := models.ParseDocumentType(r.FormValue("document_type"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "file is required"))
		return
	}
	defer file.Close()

	doc, err := h.pipeline.Upload(ctx, upload.Input{
		DocumentType: docType,
		FileName:     header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Size:         header.Size,
		Content:      file,
	})
	if err != nil {
		if h.metrics != nil && (errors.Is(err, upload.ErrFileTooLarge) || errors.Is(err, upload.ErrUnsupportedType)) {
			h.metrics.UploadsRejected.Inc()
		}
		h.logger.WarnContext(ctx, "document upload refused",
			"request_id", requestID,
			"user_id", userID,
			"document_type", docType,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	draft, err := h.forms.AttachDocument(ctx, userID, *doc)
	if err != nil {
		h.writeFormError(w, ctx, "attach document", userID, err)
		return
	}

	if h.metrics != nil {
		h.metrics.DocumentsUploaded.Inc()
	}
	if h.audit != nil {
		h.audit.Emit(ctx, userID, audit.ActionDocumentUploaded, map[string]string{
			"document_id":   doc.ID,
			"document_type": doc.Type.String(),
			"file_name":     doc.FileName,
		})
	}
	h.logger.InfoContext(ctx, "document uploaded",
		"request_id", requestID,
		"user_id", userID,
		"document_type", docType,
		"file_size", doc.FileSize,
	)
	httputil.WriteJSON(w, http.StatusCreated, &UploadResponse{
		Document: FromDocument(*doc),
		Form:     FromFormState(draft),
	})
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	sub, err := h.submissions.Submit(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "submission refused",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "verification submitted",
		"request_id", requestID,
		"user_id", userID,
		"submission_id", sub.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromSubmission(sub))
}

// HandleStatus handles GET /verification/status. Store failures degrade to
// status none with 503 so a polling client can tell unknown from absent.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	result, err := h.submissions.Status(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromStatus(result))
}

func (h *Handler) HandleGetSubmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subID, ok := h.submissionID(w, r)
	if !ok {
		return
	}

	sub, err := h.submissions.FindSubmission(ctx, subID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSubmission(sub))
}

func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.handleReview(w, r, func(ctx context.Context, subID id.SubmissionID, req *ReviewRequest) (*models.Submission, error) {
		return h.submissions.Approve(ctx, subID, req.Reviewer)
	})
}

func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.handleReview(w, r, func(ctx context.Context, subID id.SubmissionID, req *ReviewRequest) (*models.Submission, error) {
		return h.submissions.Reject(ctx, subID, req.Reviewer, req.Reason)
	})
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, subID id.SubmissionID, req *ReviewRequest) (*models.Submission, error)) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subID, ok := h.submissionID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ReviewRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sub, err := apply(ctx, subID, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "review failed",
			"request_id", requestID,
			"submission_id", subID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "submission reviewed",
		"request_id", requestID,
		"submission_id", sub.ID,
		"status", sub.Status,
		"reviewed_by", sub.ReviewedBy,
	)
	httputil.WriteJSON(w, http.StatusOK, FromSubmission(sub))
}

func (h *Handler) requireUser(w http.ResponseWriter, ctx context.Context) (id.UserID, bool) {
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.UserID{}, false
	}
	return userID, true
}

func (h *Handler) submissionID(w http.ResponseWriter, r *http.Request) (id.SubmissionID, bool) {
	subID, err := id.ParseSubmissionID(chi.URLParam(r, "submissionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.SubmissionID{}, false
	}
	return subID, true
}

func (h *Handler) writeFormError(w http.ResponseWriter, ctx context.Context, op string, userID id.UserID, err error) {
	h.logger.ErrorContext(ctx, op+" failed",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"error", err,
	)
	httputil.WriteError(w, err)
}
