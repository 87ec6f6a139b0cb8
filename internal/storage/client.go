package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"vouch/internal/platform/config"
)

// Client talks to the hosted storage service over HTTP multipart.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// NewClient builds a storage client from configuration.
// Returns nil if no endpoint is configured.
func NewClient(cfg config.StorageConfig) *Client {
	if cfg.Endpoint == "" {
		return nil
	}
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: cfg.Timeout},
	}
}

// Upload sends the file and returns the public URL assigned by the service.
func (c *Client) Upload(ctx context.Context, file File, tag string) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	if err := form.WriteField("tag", tag); err != nil {
		return "", fmt.Errorf("write tag field: %w", err)
	}
	part, err := form.CreateFormFile("file", file.Name)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return "", fmt.Errorf("copy file content: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	var decoded struct {
		URL   string `json:"url"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || decoded.URL == "" {
		if decoded.Error != "" {
			return "", fmt.Errorf("storage service: %s", decoded.Error)
		}
		return "", fmt.Errorf("storage service returned status %d", resp.StatusCode)
	}

	return decoded.URL, nil
}

// Exists issues a HEAD request against the document URL. A 404 means the
// document is gone; any other non-2xx status is treated as a service error.
func (c *Client) Exists(ctx context.Context, url string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, fmt.Errorf("build head request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("head request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	default:
		return false, fmt.Errorf("storage service returned status %d", resp.StatusCode)
	}
}
