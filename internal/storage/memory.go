package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// InMemory is an Uploader for tests and local development. Files are held in
// memory and "URLs" are synthesized from the tag and upload order.
type InMemory struct {
	mu      sync.Mutex
	files   map[string][]byte
	counter int

	// FailWith, when set, makes every upload fail with the given error.
	FailWith error
}

// NewInMemory creates an empty in-memory uploader.
func NewInMemory() *InMemory {
	return &InMemory{files: make(map[string][]byte)}
}

// Upload stores the file content and returns a synthetic URL.
func (s *InMemory) Upload(ctx context.Context, file File, tag string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return "", s.FailWith
	}

	content, err := io.ReadAll(file.Content)
	if err != nil {
		return "", fmt.Errorf("read file content: %w", err)
	}

	s.counter++
	url := fmt.Sprintf("memory://documents/%s/%d/%s", tag, s.counter, file.Name)
	s.files[url] = content
	return url, nil
}

// Exists reports whether a URL refers to a stored file.
func (s *InMemory) Exists(ctx context.Context, url string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return false, s.FailWith
	}
	_, ok := s.files[url]
	return ok, nil
}

// Get returns the stored content for a URL, for test assertions.
func (s *InMemory) Get(url string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.files[url]
	return content, ok
}

// Count returns how many files have been stored.
func (s *InMemory) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}
