package models

import (
	"fmt"
	"time"

	dErrors "vouch/pkg/domain-errors"
)

// BusinessType is the taxonomy slot a business registers under.
type BusinessType string

const (
	BusinessTypeSalon      BusinessType = "salon"
	BusinessTypeSpa        BusinessType = "spa"
	BusinessTypeBarbershop BusinessType = "barbershop"
	BusinessTypeFreelance  BusinessType = "freelance"
	BusinessTypeOther      BusinessType = "other"
)

// validBusinessTypes is the single source of truth for the taxonomy.
var validBusinessTypes = map[BusinessType]bool{
	BusinessTypeSalon:      true,
	BusinessTypeSpa:        true,
	BusinessTypeBarbershop: true,
	BusinessTypeFreelance:  true,
	BusinessTypeOther:      true,
}

// ParseBusinessType constructs a BusinessType from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseBusinessType(s string) (BusinessType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "business type cannot be empty")
	}
	t := BusinessType(s)
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid business type")
	}
	return t, nil
}

// IsValid checks if the business type is one of the supported values.
func (t BusinessType) IsValid() bool {
	return validBusinessTypes[t]
}

func (t BusinessType) String() string {
	return string(t)
}

// DocumentType identifies the semantic slot a document fills.
type DocumentType string

const (
	DocumentTypeOwnerIDFront    DocumentType = "owner_id_front"
	DocumentTypeOwnerIDBack     DocumentType = "owner_id_back"
	DocumentTypeBusinessLicense DocumentType = "business_license"
	DocumentTypeCertification   DocumentType = "certification"
	DocumentTypeInsurance       DocumentType = "insurance"
	DocumentTypeTaxDocument     DocumentType = "tax_document"
)

var validDocumentTypes = map[DocumentType]bool{
	DocumentTypeOwnerIDFront:    true,
	DocumentTypeOwnerIDBack:     true,
	DocumentTypeBusinessLicense: true,
	DocumentTypeCertification:   true,
	DocumentTypeInsurance:       true,
	DocumentTypeTaxDocument:     true,
}

// ParseDocumentType constructs a DocumentType from external input.
func ParseDocumentType(s string) (DocumentType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "document type cannot be empty")
	}
	t := DocumentType(s)
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid document type")
	}
	return t, nil
}

// IsValid checks if the document type is one of the supported slots.
func (t DocumentType) IsValid() bool {
	return validDocumentTypes[t]
}

func (t DocumentType) String() string {
	return string(t)
}

// VerificationDocument is an uploaded file reference tied to a semantic slot.
//
// Invariants:
//   - Created only by a successful upload; immutable once created
//   - FileURL points at the storage object returned by the upload call
//   - Owned by whichever form bucket holds it; destroyed by explicit
//     removal from that bucket
type VerificationDocument struct {
	ID         string       `json:"id"`
	Type       DocumentType `json:"type"`
	FileName   string       `json:"file_name"`
	FileURL    string       `json:"file_url"`
	FileSize   int64        `json:"file_size"`
	MimeType   string       `json:"mime_type"`
	UploadedAt time.Time    `json:"uploaded_at"`
}

// NewVerificationDocument constructs a document record for a completed
// upload. IDs are unique per session, not globally: `{type}_{unix-millis}`.
func NewVerificationDocument(docType DocumentType, fileName, fileURL string, fileSize int64, mimeType string, now time.Time) VerificationDocument {
	return VerificationDocument{
		ID:         fmt.Sprintf("%s_%d", docType, now.UnixMilli()),
		Type:       docType,
		FileName:   fileName,
		FileURL:    fileURL,
		FileSize:   fileSize,
		MimeType:   mimeType,
		UploadedAt: now,
	}
}
