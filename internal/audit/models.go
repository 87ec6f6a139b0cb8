// Package audit captures an append-only trail of verification lifecycle
// actions: uploads, submissions, and review decisions.
package audit

import (
	"time"

	id "vouch/pkg/domain"
)

// Actions recorded on the trail.
const (
	ActionDocumentUploaded   = "document_uploaded"
	ActionSubmissionCreated  = "submission_created"
	ActionSubmissionResent   = "submission_resubmitted"
	ActionSubmissionApproved = "submission_approved"
	ActionSubmissionRejected = "submission_rejected"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	UserID    id.UserID         `json:"user_id"`
	Action    string            `json:"action"`
	Metadata  map[string]string `json:"metadata,omitempty"`

	// Submitter context, filled by the publisher from the request.
	IP      string `json:"ip,omitempty"`
	Browser string `json:"browser,omitempty"`
	OS      string `json:"os,omitempty"`
	Mobile  bool   `json:"mobile,omitempty"`
}
