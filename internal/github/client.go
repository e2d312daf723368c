// Package github is a minimal read-only client for the GitHub REST API.
package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/xful-bep/crysknife/internal/fetch"
)

const (
	DefaultAPI = "https://api.github.com"
	UserAgent  = "Crysknife-Analysis-Tool"
)

// Client queries repositories and their contents.
type Client struct {
	http   *fetch.Client
	apiURL string
}

// NewClient creates a client for apiURL (DefaultAPI when empty). A non-empty
// token is sent as a bearer token to raise the rate limit.
func NewClient(apiURL, token string, fc *fetch.Client) *Client {
	if apiURL == "" {
		apiURL = DefaultAPI
	}
	if fc == nil {
		fc = fetch.New(0)
	}
	fc.SetHeader("Accept", "application/vnd.github+json")
	fc.SetHeader("User-Agent", UserAgent)
	if token != "" {
		fc.SetHeader("Authorization", "Bearer "+token)
	}
	return &Client{http: fc, apiURL: strings.TrimRight(apiURL, "/")}
}

// Repository is the subset of the repository object we read.
type Repository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
	Private  bool   `json:"private"`
}

// Content is a file as served by the contents API. Content is base64,
// usually wrapped at 60 columns.
type Content struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Size     int    `json:"size"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
}

// GetRepository fetches owner/repo. Errors wrap *fetch.StatusError or
// *fetch.NetworkError.
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	reqURL := fmt.Sprintf("%s/repos/%s/%s", c.apiURL, url.PathEscape(owner), url.PathEscape(repo))

	var r Repository
	if err := c.http.GetJSON(ctx, reqURL, &r); err != nil {
		return nil, fmt.Errorf("repository %s/%s: %w", owner, repo, err)
	}
	return &r, nil
}

// GetContent fetches a file from the default branch of owner/repo.
func (c *Client) GetContent(ctx context.Context, owner, repo, path string) (*Content, error) {
	reqURL := fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.apiURL, url.PathEscape(owner), url.PathEscape(repo), path)

	var content Content
	if err := c.http.GetJSON(ctx, reqURL, &content); err != nil {
		return nil, fmt.Errorf("%s in %s/%s: %w", path, owner, repo, err)
	}
	return &content, nil
}
