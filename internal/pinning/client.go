// Package pinning uploads files to a content-addressed remote store (Pinata)
// and returns stable gateway URLs for the pinned content.
package pinning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
	"time"

	"github.com/novaland-labs/marketplace/internal/constants"
	"github.com/novaland-labs/marketplace/internal/models"
)

// Pinner is the upload surface the submission orchestrator depends on.
type Pinner interface {
	HasCredentials() bool
	UploadAll(ctx context.Context, files []models.PendingFile) ([]models.UploadResult, error)
}

// Config holds the static settings of the pinning client. APIKey and
// APISecret are required before any network call is made.
type Config struct {
	APIKey    string
	APISecret string
	// Endpoint defaults to the Pinata pin endpoint.
	Endpoint string
	// Gateway is the retrieval URL prefix joined with the content address.
	Gateway string
	Timeout time.Duration
}

type Client struct {
	apiKey    string
	apiSecret string
	endpoint  string
	gateway   string
	client    *http.Client
}

type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

type pinErrorResponse struct {
	Error json.RawMessage `json:"error"`
}

func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = constants.DefaultPinataEndpoint
	}
	if cfg.Gateway == "" {
		cfg.Gateway = constants.DefaultPinataGateway
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		endpoint:  cfg.Endpoint,
		gateway:   cfg.Gateway,
		client:    &http.Client{Timeout: cfg.Timeout},
	}
}

// HasCredentials reports whether both static credential values are present.
func (c *Client) HasCredentials() bool {
	return c.apiKey != "" && c.apiSecret != ""
}

// UploadAll pins every file independently and concurrently, preserving input
// order in the result list so callers can correlate by index. One file's
// failure never cancels or blocks the others; the caller decides whether any
// failure is fatal. Missing credentials are detected before any network call
// and reported as a configuration error, not a per-file one.
func (c *Client) UploadAll(ctx context.Context, files []models.PendingFile) ([]models.UploadResult, error) {
	if !c.HasCredentials() {
		return nil, &models.ConfigurationError{
			Setting: "pinning credentials",
			Reason:  "Pinata API key or secret is missing; file uploads cannot proceed",
		}
	}

	results := make([]models.UploadResult, len(files))
	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		go func(i int, file models.PendingFile) {
			defer wg.Done()
			url, err := c.PinFile(ctx, file)
			if err != nil {
				results[i] = models.UploadResult{Err: &models.UploadError{
					FileName: file.Name,
					Kind:     file.Kind,
					Message:  err.Error(),
				}}
				return
			}
			results[i] = models.UploadResult{URL: url}
		}(i, file)
	}
	wg.Wait()

	return results, nil
}

// PinFile uploads a single file and returns its gateway retrieval URL.
func (c *Client) PinFile(ctx context.Context, file models.PendingFile) (string, error) {
	if !c.HasCredentials() {
		return "", &models.ConfigurationError{
			Setting: "pinning credentials",
			Reason:  "Pinata API key or secret is missing; file uploads cannot proceed",
		}
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", file.Name)
	if err != nil {
		return "", fmt.Errorf("failed to build upload body: %w", err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return "", fmt.Errorf("failed to build upload body: %w", err)
	}

	metadata := map[string]string{
		"name": fmt.Sprintf("Property%s_%s_%d", file.Kind, file.Name, time.Now().UnixMilli()),
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("failed to marshal pin metadata: %w", err)
	}
	if err := writer.WriteField("pinataMetadata", string(metadataJSON)); err != nil {
		return "", fmt.Errorf("failed to build upload body: %w", err)
	}
	if err := writer.WriteField("pinataOptions", `{"cidVersion":1}`); err != nil {
		return "", fmt.Errorf("failed to build upload body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("pinata_api_key", c.apiKey)
	req.Header.Set("pinata_secret_api_key", c.apiSecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read upload response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp pinErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && len(errResp.Error) > 0 {
			return "", fmt.Errorf("pinning service returned %d: %s", resp.StatusCode, string(errResp.Error))
		}
		return "", fmt.Errorf("pinning service returned %d", resp.StatusCode)
	}

	var pinned pinResponse
	if err := json.Unmarshal(respBody, &pinned); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if pinned.IpfsHash == "" {
		return "", fmt.Errorf("pinning service returned no content address for %s", file.Name)
	}

	return c.gateway + pinned.IpfsHash, nil
}
