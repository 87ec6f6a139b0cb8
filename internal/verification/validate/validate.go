// Package validate holds the pure step predicates for the verification
// wizard. Functions here take only the form state and compute; they never
// touch stores or mutate anything, so navigation guards and submission
// precondition checks share one source of truth.
package validate

import (
	"fmt"
	"strings"

	"vouch/internal/verification/models"
)

// IsStepValid reports whether the given step's requirements are met.
// Out-of-range steps are never valid.
func IsStepValid(step models.Step, f *models.FormState) bool {
	return len(StepErrors(step, f)) == 0
}

// StepErrors returns the human-readable validation messages for a step, in
// field declaration order. The order is deterministic so callers can render
// them inline and tests can assert exact arrays.
func StepErrors(step models.Step, f *models.FormState) []string {
	switch step {
	case models.StepBusinessInfo:
		return businessInfoErrors(f.BusinessInfo)
	case models.StepOwnerIdentity:
		return ownerIdentityErrors(f.OwnerIdentity)
	case models.StepBusinessDocs:
		return businessDocsErrors(f.BusinessDocs)
	case models.StepReview:
		return reviewErrors(f)
	default:
		return []string{fmt.Sprintf("Step must be between 1 and %d", models.TotalSteps)}
	}
}

// FirstInvalidStep scans steps 1..4 and returns the first failing step with
// its errors. ok is true when the whole form is submittable.
func FirstInvalidStep(f *models.FormState) (step models.Step, errs []string, ok bool) {
	for s := models.StepBusinessInfo; s <= models.StepReview; s++ {
		if errs := StepErrors(s, f); len(errs) > 0 {
			return s, errs, false
		}
	}
	return 0, nil, true
}

func businessInfoErrors(info models.BusinessInfo) []string {
	var errs []string
	if strings.TrimSpace(info.BusinessName) == "" {
		errs = append(errs, "Business name is required")
	}
	if strings.TrimSpace(info.BusinessAddress) == "" {
		errs = append(errs, "Business address is required")
	}
	if strings.TrimSpace(info.City) == "" {
		errs = append(errs, "City is required")
	}
	if strings.TrimSpace(info.State) == "" {
		errs = append(errs, "State is required")
	}
	if strings.TrimSpace(info.ZipCode) == "" {
		errs = append(errs, "ZIP code is required")
	}
	if !info.BusinessType.IsValid() {
		errs = append(errs, "A valid business type is required")
	}
	return errs
}

func ownerIdentityErrors(identity models.OwnerIdentity) []string {
	var errs []string
	if strings.TrimSpace(identity.OwnerFullName) == "" {
		errs = append(errs, "Owner full name is required")
	}
	if identity.OwnerIDFront == nil {
		errs = append(errs, "Owner ID (front) is required")
	}
	// The back side is optional.
	return errs
}

func businessDocsErrors(docs models.BusinessDocs) []string {
	var errs []string
	if docs.BusinessLicense == nil {
		errs = append(errs, "Business license is required")
	}
	if len(docs.Certifications) > models.MaxCertifications {
		errs = append(errs, fmt.Sprintf("No more than %d certifications are allowed", models.MaxCertifications))
	}
	return errs
}

func reviewErrors(f *models.FormState) []string {
	if !f.AgreedToTerms {
		return []string{"You must agree to the terms to submit"}
	}
	return nil
}
