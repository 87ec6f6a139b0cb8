package handler

import (
	"strings"

	"vouch/internal/verification/models"
	dErrors "vouch/pkg/domain-errors"
)

// BusinessInfoRequest is the HTTP request body for
// POST /verification/form/business-info. Absent fields leave the draft
// untouched.
type BusinessInfoRequest struct {
	BusinessName    *string `json:"business_name"`
	BusinessType    *string `json:"business_type"`
	BusinessAddress *string `json:"business_address"`
	City            *string `json:"city"`
	State           *string `json:"state"`
	ZipCode         *string `json:"zip_code"`
	Country         *string `json:"country"`
	YearsInBusiness *int    `json:"years_in_business"`
	Website         *string `json:"website"`
	SocialHandle    *string `json:"social_handle"`

	parsedType *models.BusinessType
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *BusinessInfoRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.BusinessType != nil {
		parsed, err := models.ParseBusinessType(*r.BusinessType)
		if err != nil {
			return err
		}
		r.parsedType = &parsed
	}
	if r.YearsInBusiness != nil && *r.YearsInBusiness < 0 {
		return dErrors.New(dErrors.CodeValidation, "years_in_business cannot be negative")
	}
	return nil
}

// Patch converts the request into the typed bucket patch.
func (r *BusinessInfoRequest) Patch() models.BusinessInfoPatch {
	return models.BusinessInfoPatch{
		BusinessName:    r.BusinessName,
		BusinessType:    r.parsedType,
		BusinessAddress: r.BusinessAddress,
		City:            r.City,
		State:           r.State,
		ZipCode:         r.ZipCode,
		Country:         r.Country,
		YearsInBusiness: r.YearsInBusiness,
		Website:         r.Website,
		SocialHandle:    r.SocialHandle,
	}
}

// OwnerIdentityRequest is the HTTP request body for
// POST /verification/form/owner-identity. Only the text field is patchable
// here; the ID documents go through the upload endpoint.
type OwnerIdentityRequest struct {
	OwnerFullName *string `json:"owner_full_name"`
}

func (r *OwnerIdentityRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}

func (r *OwnerIdentityRequest) Patch() models.OwnerIdentityPatch {
	return models.OwnerIdentityPatch{OwnerFullName: r.OwnerFullName}
}

// BusinessDocsRequest is the HTTP request body for
// POST /verification/form/business-docs. Documents enter the bucket through
// the upload endpoint; this one clears a slot.
type BusinessDocsRequest struct {
	Remove string `json:"remove"`

	parsedRemove models.DocumentType
}

func (r *BusinessDocsRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Remove = strings.TrimSpace(r.Remove)
	if r.Remove == "" {
		return dErrors.New(dErrors.CodeValidation, "remove is required")
	}
	parsed, err := models.ParseDocumentType(r.Remove)
	if err != nil {
		return err
	}
	if parsed == models.DocumentTypeCertification {
		return dErrors.New(dErrors.CodeValidation,
			"certifications are removed by document id, not by type")
	}
	r.parsedRemove = parsed
	return nil
}

// RemoveType returns the validated document type to clear.
func (r *BusinessDocsRequest) RemoveType() models.DocumentType {
	return r.parsedRemove
}

// TermsRequest is the HTTP request body for POST /verification/form/terms.
type TermsRequest struct {
	AgreedToTerms *bool `json:"agreed_to_terms"`
}

func (r *TermsRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.AgreedToTerms == nil {
		return dErrors.New(dErrors.CodeValidation, "agreed_to_terms is required")
	}
	return nil
}

// Step actions accepted by POST /verification/form/step.
const (
	stepActionNext = "next"
	stepActionPrev = "prev"
	stepActionGoto = "goto"
)

// StepRequest is the HTTP request body for POST /verification/form/step.
type StepRequest struct {
	Action string `json:"action"`
	Step   int    `json:"step"`
}

func (r *StepRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Action = strings.TrimSpace(strings.ToLower(r.Action))
	switch r.Action {
	case stepActionNext, stepActionPrev:
		return nil
	case stepActionGoto:
		if !models.Step(r.Step).IsValid() {
			return dErrors.Newf(dErrors.CodeValidation,
				"step must be between 1 and %d", models.TotalSteps)
		}
		return nil
	case "":
		return dErrors.New(dErrors.CodeValidation, "action is required")
	default:
		return dErrors.New(dErrors.CodeValidation, `action must be "next", "prev", or "goto"`)
	}
}

// ReviewRequest is the HTTP request body for the admin approve and reject
// endpoints. Reason is required for reject only; the model enforces it.
type ReviewRequest struct {
	Reviewer string `json:"reviewer"`
	Reason   string `json:"reason"`
}

func (r *ReviewRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Reviewer = strings.TrimSpace(r.Reviewer)
	if r.Reviewer == "" {
		return dErrors.New(dErrors.CodeValidation, "reviewer is required")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	return nil
}
