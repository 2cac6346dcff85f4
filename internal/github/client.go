// Package github lists a user's public repositories through the GitHub REST API.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.github.com"

var ErrEmptyUsername = errors.New("github: empty username")

type Repository struct {
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	HTMLURL     string `json:"html_url"`
	Language    string `json:"language"`
	Fork        bool   `json:"fork"`
	Stars       int    `json:"stargazers_count"`
}

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("github: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("github: %d: %s", e.StatusCode, e.Message)
}

type ClientOptions struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

type ClientOption func(*ClientOptions)

func WithBaseURL(u string) ClientOption {
	return func(o *ClientOptions) {
		o.baseURL = strings.TrimRight(u, "/")
	}
}

func WithHTTPClient(c *http.Client) ClientOption {
	return func(o *ClientOptions) {
		o.httpClient = c
	}
}

func WithUserAgent(ua string) ClientOption {
	return func(o *ClientOptions) {
		o.userAgent = ua
	}
}

type Client struct {
	ClientOptions
}

func NewClient(opts ...ClientOption) *Client {
	defaults := &ClientOptions{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		userAgent:  "form-lab",
	}

	for _, opt := range opts {
		opt(defaults)
	}

	return &Client{ClientOptions: *defaults}
}

// ListRepositories issues one unauthenticated GET /users/{username}/repos and
// returns whatever the API sends back. No pagination, retry or caching.
func (c *Client) ListRepositories(ctx context.Context, username string) ([]Repository, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrEmptyUsername
	}

	endpoint := fmt.Sprintf("%s/users/%s/repos", c.baseURL, url.PathEscape(username))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("github: build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github: list repositories for %s: %w", username, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = json.Unmarshal(body, apiErr)
		return nil, apiErr
	}

	var repos []Repository
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, fmt.Errorf("github: decode repositories: %w", err)
	}

	return repos, nil
}
