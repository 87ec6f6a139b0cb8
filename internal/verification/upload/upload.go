// Package upload implements the document upload pipeline: validate the file,
// hand it to storage, and produce an immutable VerificationDocument.
//
// The pipeline never mutates form state; callers apply the result. A second
// selection for the same slot while an upload is in flight is resolved by the
// caller replacing the slot with whichever upload completed last.
package upload

import (
	"context"
	"errors"
	"io"

	"vouch/internal/storage"
	"vouch/internal/verification/models"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/requestcontext"
)

// Typed upload failures. Domain errors returned by the pipeline wrap these so
// callers can branch with errors.Is while transports keep the coded message.
var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrUploadFailed    = errors.New("upload failed")
)

// acceptedMimeTypes is the allowlist for verification documents.
var acceptedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

// Input describes the file selected for a document slot.
type Input struct {
	DocumentType models.DocumentType
	FileName     string
	MimeType     string
	Size         int64
	Content      io.Reader
}

// Pipeline validates and uploads document files.
type Pipeline struct {
	uploader storage.Uploader
	maxSize  int64
}

// New constructs the pipeline. maxSize caps uploads in bytes.
func New(uploader storage.Uploader, maxSize int64) *Pipeline {
	return &Pipeline{uploader: uploader, maxSize: maxSize}
}

// MaxSize returns the configured upload cap in bytes.
func (p *Pipeline) MaxSize() int64 {
	return p.maxSize
}

// Upload validates the file, sends it to storage, and returns the document
// record.
//
// Errors:
//   - CodeValidation wrapping ErrFileTooLarge when the file exceeds the cap
//   - CodeValidation wrapping ErrUnsupportedType for MIME types outside the
//     accepted set
//   - CodeUnavailable wrapping ErrUploadFailed (and the storage cause) when
//     the storage call fails
func (p *Pipeline) Upload(ctx context.Context, in Input) (*models.VerificationDocument, error) {
	if !in.DocumentType.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid document type")
	}
	if in.Size > p.maxSize {
		return nil, dErrors.Wrap(dErrors.CodeValidation,
			"file exceeds the maximum allowed size", ErrFileTooLarge)
	}
	if !acceptedMimeTypes[in.MimeType] {
		return nil, dErrors.Wrap(dErrors.CodeValidation,
			"file type must be JPEG, PNG, or PDF", ErrUnsupportedType)
	}

	url, err := p.uploader.Upload(ctx, storage.File{
		Name:        in.FileName,
		ContentType: in.MimeType,
		Size:        in.Size,
		Content:     in.Content,
	}, in.DocumentType.String())
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnavailable,
			"document upload failed: "+err.Error(), errors.Join(ErrUploadFailed, err))
	}

	now := requestcontext.Now(ctx)
	doc := models.NewVerificationDocument(in.DocumentType, in.FileName, url, in.Size, in.MimeType, now)
	return &doc, nil
}
