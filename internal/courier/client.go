package courier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotConfigured is returned when the base URL or API key is missing.
var ErrNotConfigured = errors.New("courier client not configured")

// ClientConfig configures the courier API client.
type ClientConfig struct {
	BaseURL string

	// APIKey is SENSITIVE: never log it.
	APIKey string

	// HTTPClient is an optional custom HTTP client (for testing).
	HTTPClient *http.Client

	// Timeout is the request timeout.
	Timeout time.Duration
}

// Client talks to the courier API. Requests are not retried.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a courier client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" || config.APIKey == "" {
		return nil, ErrNotConfigured
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		apiKey:     config.APIKey,
	}, nil
}

type createResponse struct {
	Message string      `json:"message"`
	OrderID json.Number `json:"orderid"`
}

// CreateOrder books a delivery and returns the courier's package id.
func (c *Client) CreateOrder(ctx context.Context, req *Request) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode courier request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/order/create", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Token "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("create courier order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("create courier order: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out createResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode courier response: %w", err)
	}
	if out.OrderID == "" {
		return "", fmt.Errorf("create courier order: response has no orderid (message: %q)", out.Message)
	}
	return out.OrderID.String(), nil
}
