package blobstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"openio-assistant/internal/service"
)

// Client talks to the durable content-addressed storage gateway. Uploaded
// blobs are addressed by the root hash the gateway returns; the hash is
// opaque to this client.
type Client struct {
	BaseURL string
	client  *http.Client
}

// NewClient creates a storage gateway client. An empty baseURL is allowed and
// produces a client whose operations fail cleanly, so the index lifecycle can
// treat "gateway unconfigured" like any other unreachable storage path.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		// Blob transfers move whole serialized indexes, so they get a
		// longer leash than the LLM calls.
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// Configured reports whether a gateway URL is set.
func (c *Client) Configured() bool {
	return c.BaseURL != ""
}

// UploadResponse represents the gateway's response to an upload.
type UploadResponse struct {
	RootHash string `json:"rootHash"`
}

// Upload persists raw bytes in the durable store and returns their root
// hash. Uploading the same bytes twice is safe; the gateway may return a new
// handle each time.
func (c *Client) Upload(ctx context.Context, data []byte) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("%w: storage gateway not configured", service.ErrTransport)
	}

	uploadURL := fmt.Sprintf("%s/v1/upload", c.BaseURL)

	req, err := http.NewRequestWithContext(ctx, "POST", uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: upload failed: %v", service.ErrTransport, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: upload bad status %d: %s", service.ErrTransport, resp.StatusCode, string(raw))
	}

	var uploadResp UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		return "", fmt.Errorf("%w: failed to decode upload response: %v", service.ErrTransport, err)
	}
	if uploadResp.RootHash == "" {
		return "", fmt.Errorf("%w: gateway returned empty root hash", service.ErrTransport)
	}

	return uploadResp.RootHash, nil
}

// Download fetches the bytes previously persisted under the root hash.
// An unknown hash is reported as ErrNotFound; everything else that goes
// wrong on the wire is ErrTransport.
func (c *Client) Download(ctx context.Context, rootHash string) ([]byte, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("%w: storage gateway not configured", service.ErrTransport)
	}
	if rootHash == "" {
		return nil, fmt.Errorf("%w: root hash is required", service.ErrInvalidParameter)
	}

	downloadURL := fmt.Sprintf("%s/v1/download/%s", c.BaseURL, url.PathEscape(rootHash))

	req, err := http.NewRequestWithContext(ctx, "GET", downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: download failed: %v", service.ErrTransport, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: no blob for root hash %s", service.ErrNotFound, rootHash)
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: download bad status %d: %s", service.ErrTransport, resp.StatusCode, string(raw))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read blob: %v", service.ErrTransport, err)
	}

	return data, nil
}
