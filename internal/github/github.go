package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/repodigest/repo-digest/internal/models"
)

const defaultBaseURL = "https://api.github.com"

var (
	// ErrRepositoryNotFound means the reference does not exist or is not
	// accessible with the current credentials.
	ErrRepositoryNotFound = errors.New("repository not found")

	// ErrRepositoryEmpty means the root contents listing had no entries.
	ErrRepositoryEmpty = errors.New("repository is empty")
)

// Client is a thin wrapper around the GitHub REST API. An empty token means
// unauthenticated calls (60/hour); a token raises the limit to 5,000/hour.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		token:      token,
		httpClient: http.DefaultClient,
	}
}

// DefaultBranch resolves the repository's primary branch via the metadata
// endpoint rather than assuming main or master.
func (c *Client) DefaultBranch(ctx context.Context, ref models.RepoRef) (string, error) {
	body, err := c.get(ctx, fmt.Sprintf("/repos/%s/%s", ref.Owner, ref.Name), "")
	if err != nil {
		return "", err
	}

	var meta struct {
		DefaultBranch string `json:"default_branch"`
	}
	if err := json.Unmarshal(body, &meta); err != nil {
		return "", fmt.Errorf("parsing repository metadata: %w", err)
	}
	if meta.DefaultBranch == "" {
		return "", fmt.Errorf("repository metadata for %s has no default branch", ref.FullName())
	}
	return meta.DefaultBranch, nil
}

// ListRoot returns the root directory entries for the given branch, in the
// order the contents API reports them.
func (c *Client) ListRoot(ctx context.Context, ref models.RepoRef, branch string) ([]models.DirectoryEntry, error) {
	path := fmt.Sprintf("/repos/%s/%s/contents/?ref=%s", ref.Owner, ref.Name, url.QueryEscape(branch))
	body, err := c.get(ctx, path, "")
	if err != nil {
		return nil, err
	}

	var entries []models.DirectoryEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("parsing contents listing: %w", err)
	}
	return entries, nil
}

// FetchFile returns the raw text of one file at the given branch.
func (c *Client) FetchFile(ctx context.Context, ref models.RepoRef, branch, path string) (string, error) {
	p := fmt.Sprintf("/repos/%s/%s/contents/%s?ref=%s",
		ref.Owner, ref.Name, url.PathEscape(path), url.QueryEscape(branch))
	body, err := c.get(ctx, p, "application/vnd.github.raw+json")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) get(ctx context.Context, path, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if accept == "" {
		accept = "application/vnd.github+json"
	}
	req.Header.Set("Accept", accept)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound, http.StatusForbidden:
		// 403 covers rate-limited and blocked repos; both are inaccessible
		// from the caller's point of view.
		return nil, fmt.Errorf("%w: GET %s returned %d", ErrRepositoryNotFound, path, resp.StatusCode)
	default:
		return nil, fmt.Errorf("GitHub API returned %d: %s", resp.StatusCode, string(body))
	}
}
