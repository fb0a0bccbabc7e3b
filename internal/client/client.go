// Package client provides an HTTP client for the crime analytics backend.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/simnet/internal/filter"
	"github.com/raphaelgruber/simnet/internal/models"
)

// ErrNetwork wraps every failure to obtain a usable backend response:
// transport errors, non-200 statuses and undecodable bodies.
var ErrNetwork = errors.New("backend request failed")

// Backend endpoints.
const (
	PathSimilarityNetwork = "/analysis/similarity-network"
	PathUniqueBairros     = "/statistics/unique-bairros"
	PathUniqueCrimeTypes  = "/statistics/unique-crime-types"
)

// DefaultBaseURL is used when no backend URL is configured.
const DefaultBaseURL = "http://localhost:8000"

// DefaultTimeout bounds a single backend request.
const DefaultTimeout = 60 * time.Second

// maxErrorBody caps how much of an error response is kept in the error text.
const maxErrorBody = 512

// Client talks to the analytics backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a backend client. Empty baseURL and zero timeout select the
// defaults; a nil logger uses slog.Default().
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// BaseURL returns the backend root the client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// get issues a GET request and decodes the JSON body into result.
func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed", "path", path, "request_id", requestID, "error", err)
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrNetwork, err)
	}

	c.logger.Debug("backend request completed",
		"path", path,
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: server error: %s - %s", ErrNetwork, resp.Status, truncate(string(body), maxErrorBody))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("%w: unmarshal response: %v", ErrNetwork, err)
	}
	return nil
}

// SimilarityNetwork fetches the similarity network for the given filters.
// Nil node or edge lists in the payload are normalized to empty slices.
func (c *Client) SimilarityNetwork(ctx context.Context, p filter.Params) (*models.NetworkResponse, error) {
	var resp models.NetworkResponse
	if err := c.get(ctx, PathSimilarityNetwork, p.Values(), &resp); err != nil {
		return nil, err
	}
	if resp.Nodes == nil {
		resp.Nodes = []models.CrimeNode{}
	}
	if resp.Edges == nil {
		resp.Edges = []models.SimilarityEdge{}
	}
	return &resp, nil
}

// UniqueBairros lists the neighbourhoods available as filters.
func (c *Client) UniqueBairros(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.get(ctx, PathUniqueBairros, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UniqueCrimeTypes lists the crime types available as filters.
func (c *Client) UniqueCrimeTypes(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.get(ctx, PathUniqueCrimeTypes, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
