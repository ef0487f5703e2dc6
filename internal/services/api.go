// API client for making raw HTTP requests to the Django transfer backend
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/auth"
	"golang.org/x/time/rate"
)

const apiPrefix = "/api/v1"

// APIClient provides methods for making raw HTTP requests to the transfer backend.
//
// Requests pass through a [rate.Limiter] so bursts of user actions cannot
// hammer the backend.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewAPIClient creates a new client for the transfer backend.
//
// baseURL defaults to http://localhost:8000 and rps to 5 requests per second.
func NewAPIClient(baseURL string, client *http.Client, rps float64) *APIClient {
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	if client == nil {
		client = http.DefaultClient
	}
	if rps <= 0 {
		rps = 5.0
	}

	return &APIClient{
		baseURL:    baseURL,
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// AuthorizeURL returns the backend endpoint that initiates a provider's
// consent flow. This URL is navigated to in a browser, not fetched: the
// backend performs the OAuth dance and redirects back to the local callback
// server with the result.
func (a *APIClient) AuthorizeURL(provider auth.Provider) string {
	return fmt.Sprintf("%s%s/%s/authorize/", a.baseURL, apiPrefix, provider)
}

// Get performs a GET request to the specified API path and returns the raw response.
func (a *APIClient) Get(ctx context.Context, path string) (*APIResponse, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+apiPrefix+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return a.do(req)
}

// Post performs a POST request with the given JSON body and returns the raw response.
func (a *APIClient) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+apiPrefix+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	return a.do(req)
}

// Transfer submits a playlist transfer request body to the backend.
func (a *APIClient) Transfer(ctx context.Context, payload []byte) (*APIResponse, error) {
	return a.Post(ctx, "/transfer/", payload)
}

func (a *APIClient) do(req *http.Request) (*APIResponse, error) {
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}
