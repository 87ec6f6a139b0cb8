package models

import (
	"time"

	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
)

// Step is one of the four sequential pages of the verification wizard.
type Step int

const (
	StepBusinessInfo  Step = 1
	StepOwnerIdentity Step = 2
	StepBusinessDocs  Step = 3
	StepReview        Step = 4

	TotalSteps = 4
)

// IsValid reports whether the step is within the wizard bounds.
func (s Step) IsValid() bool {
	return s >= StepBusinessInfo && s <= StepReview
}

// MaxCertifications bounds the certifications list.
const MaxCertifications = 5

// BusinessInfo is the step-1 bucket: business identity and address.
type BusinessInfo struct {
	BusinessName    string       `json:"business_name"`
	BusinessType    BusinessType `json:"business_type"`
	BusinessAddress string       `json:"business_address"`
	City            string       `json:"city"`
	State           string       `json:"state"`
	ZipCode         string       `json:"zip_code"`
	Country         string       `json:"country"`
	YearsInBusiness int          `json:"years_in_business"`
	Website         string       `json:"website"`
	SocialHandle    string       `json:"social_handle"`
}

// OwnerIdentity is the step-2 bucket: the owner's legal name and ID document.
// The full name should match the name printed on the uploaded ID; this is
// advisory and checked by the reviewer, not the code.
type OwnerIdentity struct {
	OwnerFullName string                `json:"owner_full_name"`
	OwnerIDFront  *VerificationDocument `json:"owner_id_front"`
	OwnerIDBack   *VerificationDocument `json:"owner_id_back"`
}

// BusinessDocs is the step-3 bucket: supporting business documents.
type BusinessDocs struct {
	BusinessLicense *VerificationDocument  `json:"business_license"`
	Certifications  []VerificationDocument `json:"certifications"`
	Insurance       *VerificationDocument  `json:"insurance"`
	TaxDocument     *VerificationDocument  `json:"tax_document"`
}

// FormState is the wizard aggregate for one user.
//
// Invariants:
//   - CurrentStep is always in [1, TotalSteps]
//   - Forward navigation to step n requires step n-1 to be valid; the guard
//     is enforced by the form service, which owns the validity predicates
//   - Field updates never change CurrentStep
//   - SubmitError is cleared at the start of each submit attempt
type FormState struct {
	UserID        id.UserID     `json:"user_id"`
	CurrentStep   Step          `json:"current_step"`
	BusinessInfo  BusinessInfo  `json:"business_info"`
	OwnerIdentity OwnerIdentity `json:"owner_identity"`
	BusinessDocs  BusinessDocs  `json:"business_docs"`
	AgreedToTerms bool          `json:"agreed_to_terms"`
	IsSubmitting  bool          `json:"is_submitting"`
	SubmitError   string        `json:"submit_error,omitempty"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// NewFormState creates a fresh draft at step 1. BusinessType starts on the
// first taxonomy option, matching the wizard's pre-selected choice.
func NewFormState(userID id.UserID, now time.Time) *FormState {
	return &FormState{
		UserID:      userID,
		CurrentStep: StepBusinessInfo,
		BusinessInfo: BusinessInfo{
			BusinessType: BusinessTypeSalon,
		},
		UpdatedAt: now,
	}
}

// BusinessInfoPatch is a partial update of the step-1 bucket. Nil fields are
// left untouched; the shape is checked at compile time so a typo in a field
// name cannot silently drop an update.
type BusinessInfoPatch struct {
	BusinessName    *string
	BusinessType    *BusinessType
	BusinessAddress *string
	City            *string
	State           *string
	ZipCode         *string
	Country         *string
	YearsInBusiness *int
	Website         *string
	SocialHandle    *string
}

// ApplyBusinessInfo merges the patch into the business-info bucket.
//
// Errors: returns CodeValidation for a negative years-in-business or an
// unknown business type; the bucket is left unchanged on error.
func (f *FormState) ApplyBusinessInfo(patch BusinessInfoPatch, now time.Time) error {
	if patch.BusinessType != nil && !patch.BusinessType.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid business type")
	}
	if patch.YearsInBusiness != nil && *patch.YearsInBusiness < 0 {
		return dErrors.New(dErrors.CodeValidation, "years in business cannot be negative")
	}

	info := f.BusinessInfo
	if patch.BusinessName != nil {
		info.BusinessName = *patch.BusinessName
	}
	if patch.BusinessType != nil {
		info.BusinessType = *patch.BusinessType
	}
	if patch.BusinessAddress != nil {
		info.BusinessAddress = *patch.BusinessAddress
	}
	if patch.City != nil {
		info.City = *patch.City
	}
	if patch.State != nil {
		info.State = *patch.State
	}
	if patch.ZipCode != nil {
		info.ZipCode = *patch.ZipCode
	}
	if patch.Country != nil {
		info.Country = *patch.Country
	}
	if patch.YearsInBusiness != nil {
		info.YearsInBusiness = *patch.YearsInBusiness
	}
	if patch.Website != nil {
		info.Website = *patch.Website
	}
	if patch.SocialHandle != nil {
		info.SocialHandle = *patch.SocialHandle
	}

	// Replace the whole bucket so concurrent handlers never interleave
	// partial writes.
	f.BusinessInfo = info
	f.UpdatedAt = now
	return nil
}

// OwnerIdentityPatch is a partial update of the step-2 scalar fields.
// Document slots are set through SetDocument/RemoveDocument.
type OwnerIdentityPatch struct {
	OwnerFullName *string
}

// ApplyOwnerIdentity merges the patch into the owner-identity bucket.
func (f *FormState) ApplyOwnerIdentity(patch OwnerIdentityPatch, now time.Time) {
	identity := f.OwnerIdentity
	if patch.OwnerFullName != nil {
		identity.OwnerFullName = *patch.OwnerFullName
	}
	f.OwnerIdentity = identity
	f.UpdatedAt = now
}

// SetDocument places an uploaded document into the slot named by its type.
// Certifications go through AddCertification instead.
//
// Errors: returns CodeInvalidInput for the certification type or an unknown
// slot.
func (f *FormState) SetDocument(doc VerificationDocument, now time.Time) error {
	switch doc.Type {
	case DocumentTypeOwnerIDFront:
		identity := f.OwnerIdentity
		identity.OwnerIDFront = &doc
		f.OwnerIdentity = identity
	case DocumentTypeOwnerIDBack:
		identity := f.OwnerIdentity
		identity.OwnerIDBack = &doc
		f.OwnerIdentity = identity
	case DocumentTypeBusinessLicense:
		docs := f.BusinessDocs
		docs.BusinessLicense = &doc
		f.BusinessDocs = docs
	case DocumentTypeInsurance:
		docs := f.BusinessDocs
		docs.Insurance = &doc
		f.BusinessDocs = docs
	case DocumentTypeTaxDocument:
		docs := f.BusinessDocs
		docs.TaxDocument = &doc
		f.BusinessDocs = docs
	case DocumentTypeCertification:
		return dErrors.New(dErrors.CodeInvalidInput, "certifications must be added through the certification list")
	default:
		return dErrors.New(dErrors.CodeInvalidInput, "unknown document slot")
	}
	f.UpdatedAt = now
	return nil
}

// RemoveDocument clears the slot named by the type, releasing the document.
func (f *FormState) RemoveDocument(docType DocumentType, now time.Time) error {
	switch docType {
	case DocumentTypeOwnerIDFront:
		identity := f.OwnerIdentity
		identity.OwnerIDFront = nil
		f.OwnerIdentity = identity
	case DocumentTypeOwnerIDBack:
		identity := f.OwnerIdentity
		identity.OwnerIDBack = nil
		f.OwnerIdentity = identity
	case DocumentTypeBusinessLicense:
		docs := f.BusinessDocs
		docs.BusinessLicense = nil
		f.BusinessDocs = docs
	case DocumentTypeInsurance:
		docs := f.BusinessDocs
		docs.Insurance = nil
		f.BusinessDocs = docs
	case DocumentTypeTaxDocument:
		docs := f.BusinessDocs
		docs.TaxDocument = nil
		f.BusinessDocs = docs
	case DocumentTypeCertification:
		return dErrors.New(dErrors.CodeInvalidInput, "certifications are removed by id")
	default:
		return dErrors.New(dErrors.CodeInvalidInput, "unknown document slot")
	}
	f.UpdatedAt = now
	return nil
}

// AddCertification appends a certification document.
//
// Errors: returns CodeValidation when the list already holds
// MaxCertifications entries; the list is left unchanged.
func (f *FormState) AddCertification(doc VerificationDocument, now time.Time) error {
	if len(f.BusinessDocs.Certifications) >= MaxCertifications {
		return dErrors.Newf(dErrors.CodeValidation, "no more than %d certifications are allowed", MaxCertifications)
	}

	docs := f.BusinessDocs
	docs.Certifications = append(append([]VerificationDocument{}, docs.Certifications...), doc)
	f.BusinessDocs = docs
	f.UpdatedAt = now
	return nil
}

// RemoveCertification filters the list by document id. Returns false when no
// entry matched.
func (f *FormState) RemoveCertification(docID string, now time.Time) bool {
	kept := make([]VerificationDocument, 0, len(f.BusinessDocs.Certifications))
	removed := false
	for _, cert := range f.BusinessDocs.Certifications {
		if cert.ID == docID {
			removed = true
			continue
		}
		kept = append(kept, cert)
	}
	if !removed {
		return false
	}

	docs := f.BusinessDocs
	docs.Certifications = kept
	f.BusinessDocs = docs
	f.UpdatedAt = now
	return true
}

// SetAgreedToTerms records the step-4 consent checkbox.
func (f *FormState) SetAgreedToTerms(agreed bool, now time.Time) {
	f.AgreedToTerms = agreed
	f.UpdatedAt = now
}

// GoToStep jumps directly to a step. Only the bounds are enforced here:
// editing from the review step jumps back freely. Forward guards belong to
// the service's NextStep path.
//
// Errors: returns CodeValidation when the step is out of bounds.
func (f *FormState) GoToStep(step Step, now time.Time) error {
	if !step.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "step must be between 1 and %d", TotalSteps)
	}
	f.CurrentStep = step
	f.UpdatedAt = now
	return nil
}

// Advance moves one step forward, capped at the last step. The caller must
// have checked step validity; this only applies the move.
func (f *FormState) Advance(now time.Time) {
	if f.CurrentStep < StepReview {
		f.CurrentStep++
		f.UpdatedAt = now
	}
}

// Retreat moves one step back, floored at the first step. Always allowed.
func (f *FormState) Retreat(now time.Time) {
	if f.CurrentStep > StepBusinessInfo {
		f.CurrentStep--
		f.UpdatedAt = now
	}
}

// BeginSubmit marks a submit attempt in flight and clears the previous error.
func (f *FormState) BeginSubmit(now time.Time) {
	f.IsSubmitting = true
	f.SubmitError = ""
	f.UpdatedAt = now
}

// FinishSubmit records the outcome of a submit attempt. An empty message
// means success.
func (f *FormState) FinishSubmit(submitErr string, now time.Time) {
	f.IsSubmitting = false
	f.SubmitError = submitErr
	f.UpdatedAt = now
}

// Clone returns a deep copy so stores can hand out snapshots without aliasing
// the certifications slice or document pointers.
func (f *FormState) Clone() *FormState {
	clone := *f

	if f.OwnerIdentity.OwnerIDFront != nil {
		front := *f.OwnerIdentity.OwnerIDFront
		clone.OwnerIdentity.OwnerIDFront = &front
	}
	if f.OwnerIdentity.OwnerIDBack != nil {
		back := *f.OwnerIdentity.OwnerIDBack
		clone.OwnerIdentity.OwnerIDBack = &back
	}
	if f.BusinessDocs.BusinessLicense != nil {
		license := *f.BusinessDocs.BusinessLicense
		clone.BusinessDocs.BusinessLicense = &license
	}
	if f.BusinessDocs.Insurance != nil {
		insurance := *f.BusinessDocs.Insurance
		clone.BusinessDocs.Insurance = &insurance
	}
	if f.BusinessDocs.TaxDocument != nil {
		tax := *f.BusinessDocs.TaxDocument
		clone.BusinessDocs.TaxDocument = &tax
	}
	if f.BusinessDocs.Certifications != nil {
		clone.BusinessDocs.Certifications = append([]VerificationDocument{}, f.BusinessDocs.Certifications...)
	}

	return &clone
}
