// ABOUTME: HTTP client for the Who is Who portal API
// ABOUTME: Wraps portal calls with proper error handling for CLI usage

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client is the API client for the Who is Who portal
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client with the given base URL
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// HealthResponse represents the /api/v1/health endpoint response
type HealthResponse struct {
	Status      string `json:"status"`
	Upstream    string `json:"upstream"`
	UpstreamURL string `json:"upstream_url"`
}

// VerifyInput represents a public credential lookup
type VerifyInput struct {
	CredentialID string `json:"credentialId"`
}

// VerifyResponse represents the verification registry's answer
type VerifyResponse struct {
	Success    bool            `json:"success"`
	Verified   bool            `json:"verified"`
	Message    string          `json:"message,omitempty"`
	Credential json.RawMessage `json:"credential,omitempty"`
}

// ErrorResponse represents a portal error envelope
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    int    `json:"code"`
}

// Health calls the /api/v1/health endpoint
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp)
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("invalid response from portal: %w", err)
	}

	return &health, nil
}

// Verify calls POST /api/v1/verify
func (c *Client) Verify(ctx context.Context, input *VerifyInput) (*VerifyResponse, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/verify", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	// The portal proxies the registry's answer verbatim; a 404 still carries a
	// well-formed body saying the credential is unknown.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return nil, c.handleErrorResponse(resp)
	}

	var result VerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("invalid response from portal: %w", err)
	}

	return &result, nil
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if ctx.Err() == context.Canceled {
		return fmt.Errorf("request canceled")
	}
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("request timed out")
	}
	return fmt.Errorf("cannot connect to portal at %s: %w", c.baseURL, err)
}

// handleErrorResponse parses portal error responses
func (c *Client) handleErrorResponse(resp *http.Response) error {
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return fmt.Errorf("portal returned status %d", resp.StatusCode)
	}
	return fmt.Errorf("portal error: %s", errResp.Error)
}
