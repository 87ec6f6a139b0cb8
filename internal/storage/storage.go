// Package storage consumes the hosted document-storage service.
//
// The service accepts a file plus a document-type tag and returns a publicly
// fetchable URL. The storage protocol is opaque to the rest of the system;
// everything upstream depends only on the Uploader interface.
package storage

import (
	"context"
	"io"
)

// File is the payload handed to the storage service.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Uploader uploads a file under a document-type tag and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, file File, tag string) (string, error)
}

// Checker reports whether a previously uploaded document is still fetchable.
type Checker interface {
	Exists(ctx context.Context, url string) (bool, error)
}
