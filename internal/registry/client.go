package registry

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/xful-bep/crysknife/internal/fetch"
)

const DefaultRegistry = "https://registry.npmjs.org"

// MaxSearchSize is the largest page the search endpoint serves.
const MaxSearchSize = 250

// Client is an HTTP client for the npm registry.
type Client struct {
	http        *fetch.Client
	registryURL string
}

// NewClient creates a new registry client. If registryURL is empty, the default
// npm registry is used. A nil fc gets a client with the default timeout.
func NewClient(registryURL string, fc *fetch.Client) *Client {
	if registryURL == "" {
		registryURL = DefaultRegistry
	}
	registryURL = strings.TrimRight(registryURL, "/")
	if fc == nil {
		fc = fetch.New(0)
	}

	return &Client{
		http:        fc,
		registryURL: registryURL,
	}
}

// URL returns the registry base URL.
func (c *Client) URL() string { return c.registryURL }

// GetPackage fetches full metadata for a package from the registry. Errors
// wrap *fetch.StatusError or *fetch.NetworkError.
func (c *Client) GetPackage(ctx context.Context, name string) (*PackageMetadata, error) {
	reqURL := fmt.Sprintf("%s/%s", c.registryURL, url.PathEscape(name))

	var metadata PackageMetadata
	if err := c.http.GetJSON(ctx, reqURL, &metadata); err != nil {
		return nil, fmt.Errorf("package %q: %w", name, err)
	}
	return &metadata, nil
}

// GetUserPackages lists the packages a user has access to, keyed by package
// name with the access level as value.
func (c *Client) GetUserPackages(ctx context.Context, user string) (map[string]string, error) {
	reqURL := fmt.Sprintf("%s/-/user/%s/package", c.registryURL, url.PathEscape(user))

	var pkgs map[string]string
	if err := c.http.GetJSON(ctx, reqURL, &pkgs); err != nil {
		return nil, fmt.Errorf("packages of user %q: %w", user, err)
	}
	return pkgs, nil
}

// Search runs a full-text search. size is clamped to [1, MaxSearchSize].
func (c *Client) Search(ctx context.Context, text string, size int) (*SearchResult, error) {
	if size <= 0 || size > MaxSearchSize {
		size = MaxSearchSize
	}
	q := url.Values{}
	q.Set("text", text)
	q.Set("size", fmt.Sprint(size))
	reqURL := fmt.Sprintf("%s/-/v1/search?%s", c.registryURL, q.Encode())

	var res SearchResult
	if err := c.http.GetJSON(ctx, reqURL, &res); err != nil {
		return nil, fmt.Errorf("search %q: %w", text, err)
	}
	return &res, nil
}
