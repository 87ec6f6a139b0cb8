package validate

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vouch/internal/verification/models"
	id "vouch/pkg/domain"
)

func newDraft() *models.FormState {
	return models.NewFormState(id.UserID(uuid.New()), time.Now())
}

func doc(docType models.DocumentType) *models.VerificationDocument {
	d := models.NewVerificationDocument(docType, "file.pdf", "https://files.example.com/file.pdf", 1024, "application/pdf", time.Now())
	return &d
}

func TestBusinessInfoErrors(t *testing.T) {
	t.Run("empty form yields every required-field message in order", func(t *testing.T) {
		errs := StepErrors(models.StepBusinessInfo, newDraft())
		assert.Equal(t, []string{
			"Business name is required",
			"Business address is required",
			"City is required",
			"State is required",
			"ZIP code is required",
		}, errs)
	})

	t.Run("invalid business type appends its message last", func(t *testing.T) {
		f := newDraft()
		f.BusinessInfo.BusinessType = models.BusinessType("bakery")
		errs := StepErrors(models.StepBusinessInfo, f)
		require.Len(t, errs, 6)
		assert.Equal(t, "A valid business type is required", errs[5])
	})

	t.Run("whitespace-only fields do not count", func(t *testing.T) {
		f := newDraft()
		f.BusinessInfo.BusinessName = "   "
		errs := StepErrors(models.StepBusinessInfo, f)
		assert.Contains(t, errs, "Business name is required")
	})

	t.Run("complete bucket passes", func(t *testing.T) {
		f := newDraft()
		f.BusinessInfo.BusinessName = "Gloss Studio"
		f.BusinessInfo.BusinessAddress = "9 Pine Ave"
		f.BusinessInfo.City = "Tucson"
		f.BusinessInfo.State = "AZ"
		f.BusinessInfo.ZipCode = "85701"
		assert.True(t, IsStepValid(models.StepBusinessInfo, f))
	})

	t.Run("optional fields never block", func(t *testing.T) {
		f := newDraft()
		f.BusinessInfo.BusinessName = "Gloss Studio"
		f.BusinessInfo.BusinessAddress = "9 Pine Ave"
		f.BusinessInfo.City = "Tucson"
		f.BusinessInfo.State = "AZ"
		f.BusinessInfo.ZipCode = "85701"
		f.BusinessInfo.Country = ""
		f.BusinessInfo.Website = ""
		f.BusinessInfo.SocialHandle = ""
		f.BusinessInfo.YearsInBusiness = 0
		assert.True(t, IsStepValid(models.StepBusinessInfo, f))
	})
}

func TestOwnerIdentityErrors(t *testing.T) {
	t.Run("name and front ID are both required", func(t *testing.T) {
		errs := StepErrors(models.StepOwnerIdentity, newDraft())
		assert.Equal(t, []string{
			"Owner full name is required",
			"Owner ID (front) is required",
		}, errs)
	})

	t.Run("back of ID is optional", func(t *testing.T) {
		f := newDraft()
		f.OwnerIdentity.OwnerFullName = "Robin Marsh"
		f.OwnerIdentity.OwnerIDFront = doc(models.DocumentTypeOwnerIDFront)
		assert.True(t, IsStepValid(models.StepOwnerIdentity, f))
	})
}

func TestBusinessDocsErrors(t *testing.T) {
	t.Run("license is required", func(t *testing.T) {
		errs := StepErrors(models.StepBusinessDocs, newDraft())
		assert.Equal(t, []string{"Business license is required"}, errs)
	})

	t.Run("certifications valid at the cap", func(t *testing.T) {
		f := newDraft()
		f.BusinessDocs.BusinessLicense = doc(models.DocumentTypeBusinessLicense)
		for i := 0; i < models.MaxCertifications; i++ {
			f.BusinessDocs.Certifications = append(f.BusinessDocs.Certifications, *doc(models.DocumentTypeCertification))
		}
		assert.True(t, IsStepValid(models.StepBusinessDocs, f))
	})

	t.Run("certifications over the cap fail", func(t *testing.T) {
		f := newDraft()
		f.BusinessDocs.BusinessLicense = doc(models.DocumentTypeBusinessLicense)
		for i := 0; i < models.MaxCertifications+1; i++ {
			f.BusinessDocs.Certifications = append(f.BusinessDocs.Certifications, *doc(models.DocumentTypeCertification))
		}
		errs := StepErrors(models.StepBusinessDocs, f)
		assert.Equal(t, []string{"No more than 5 certifications are allowed"}, errs)
	})

	t.Run("insurance and tax documents are optional", func(t *testing.T) {
		f := newDraft()
		f.BusinessDocs.BusinessLicense = doc(models.DocumentTypeBusinessLicense)
		assert.True(t, IsStepValid(models.StepBusinessDocs, f))
	})
}

func TestReviewErrors(t *testing.T) {
	t.Run("terms must be agreed", func(t *testing.T) {
		errs := StepErrors(models.StepReview, newDraft())
		assert.Equal(t, []string{"You must agree to the terms to submit"}, errs)
	})

	t.Run("agreeing clears the step", func(t *testing.T) {
		f := newDraft()
		f.AgreedToTerms = true
		assert.True(t, IsStepValid(models.StepReview, f))
	})
}

func TestOutOfRangeSteps(t *testing.T) {
	f := newDraft()
	assert.False(t, IsStepValid(models.Step(0), f))
	assert.False(t, IsStepValid(models.Step(5), f))
}

func TestFirstInvalidStep(t *testing.T) {
	f := newDraft()

	step, errs, ok := FirstInvalidStep(f)
	require.False(t, ok)
	assert.Equal(t, models.StepBusinessInfo, step)
	assert.Len(t, errs, 5)

	f.BusinessInfo.BusinessName = "Gloss Studio"
	f.BusinessInfo.BusinessAddress = "9 Pine Ave"
	f.BusinessInfo.City = "Tucson"
	f.BusinessInfo.State = "AZ"
	f.BusinessInfo.ZipCode = "85701"

	step, _, ok = FirstInvalidStep(f)
	require.False(t, ok)
	assert.Equal(t, models.StepOwnerIdentity, step)

	f.OwnerIdentity.OwnerFullName = "Robin Marsh"
	f.OwnerIdentity.OwnerIDFront = doc(models.DocumentTypeOwnerIDFront)

	step, _, ok = FirstInvalidStep(f)
	require.False(t, ok)
	assert.Equal(t, models.StepBusinessDocs, step)

	f.BusinessDocs.BusinessLicense = doc(models.DocumentTypeBusinessLicense)

	step, errs, ok = FirstInvalidStep(f)
	require.False(t, ok)
	assert.Equal(t, models.StepReview, step)
	assert.Equal(t, []string{"You must agree to the terms to submit"}, errs)

	f.AgreedToTerms = true

	_, _, ok = FirstInvalidStep(f)
	assert.True(t, ok)
}
