// internal/github/client.go
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	custom_errors "github-repo-searcher/internal/errors"
)

const (
	// GitHub caps search results per page at 100; we only ever take one
	// fixed page of 30.
	perPage = 30

	acceptHeader = "application/vnd.github.v3+json"
	userAgent    = "GitHub-Repository-Searcher"
)

// SearchResult is the envelope returned by the GitHub repository search API.
type SearchResult struct {
	TotalCount        int    `json:"total_count"`
	IncompleteResults bool   `json:"incomplete_results"`
	Items             []Item `json:"items"`
}

// Item is a single repository entry in a search response. Counter and text
// fields are pointers because GitHub omits them in some payloads; defaulting
// happens at the mapping layer, not here.
type Item struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Description     *string `json:"description"`
	Language        *string `json:"language"`
	StargazersCount *int32  `json:"stargazers_count"`
	ForksCount      *int32  `json:"forks_count"`
	UpdatedAt       string  `json:"updated_at"`
	Owner           *Owner  `json:"owner"`
}

// Owner is the owner sub-object of a search item.
type Owner struct {
	Login string `json:"login"`
}

// Client calls the GitHub repository search API.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	searchEndpoint string
	logger         *slog.Logger
}

// NewClient creates and configures a new Client instance. When token is
// non-empty the underlying http.Client authenticates with it; searches also
// work unauthenticated, at a lower rate limit.
func NewClient(token, baseURL, searchEndpoint string, timeout time.Duration, logger *slog.Logger) *Client {
	httpClient := &http.Client{Timeout: timeout}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
		httpClient.Timeout = timeout
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        strings.TrimRight(baseURL, "/"),
		searchEndpoint: searchEndpoint,
		logger:         logger,
	}
}

// Search performs a single blocking repository search and decodes the
// response envelope. There is no retry; every failure surfaces as an
// *errors.UpstreamError.
func (c *Client) Search(ctx context.Context, query, language, sort string) (*SearchResult, error) {
	url := c.buildSearchURL(query, language, sort)
	c.logger.Debug("Calling GitHub search API", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &custom_errors.UpstreamError{Message: "failed to build GitHub API request", Err: err}
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &custom_errors.UpstreamError{Message: "failed to call GitHub API", Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var result SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &custom_errors.UpstreamError{Message: "failed to decode GitHub API response", Err: err}
	}

	c.logger.Debug("GitHub search API responded",
		"total_count", result.TotalCount,
		"incomplete_results", result.IncompleteResults,
		"items", len(result.Items))

	return &result, nil
}

// buildSearchURL assembles the upstream search URL. The q value is built by
// raw string concatenation: GitHub's search grammar uses '+' as a qualifier
// separator, so percent-encoding the whole value would change its meaning.
// Only spaces are escaped, because a bare space is not valid in an HTTP
// request line; other reserved characters pass through as-is.
func (c *Client) buildSearchURL(query, language, sort string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	b.WriteString(c.searchEndpoint)
	b.WriteString("?q=")
	b.WriteString(query)

	if strings.TrimSpace(language) != "" {
		b.WriteString("+language:")
		b.WriteString(language)
	}
	if strings.TrimSpace(sort) != "" {
		b.WriteString("&sort=")
		b.WriteString(sort)
	}
	fmt.Fprintf(&b, "&per_page=%d", perPage)

	return strings.ReplaceAll(b.String(), " ", "%20")
}

// checkStatus maps non-success upstream statuses to the error taxonomy:
// 403 means rate-limit exhaustion, 422 a rejected query, anything else a
// generic upstream failure.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	switch resp.StatusCode {
	case http.StatusForbidden:
		return &custom_errors.UpstreamError{
			Status:  resp.StatusCode,
			Message: "GitHub API rate limit exceeded. Please try again later.",
		}
	case http.StatusUnprocessableEntity:
		return &custom_errors.UpstreamError{
			Status:  resp.StatusCode,
			Message: "Invalid search query. Please check your search parameters.",
		}
	default:
		// Best-effort body excerpt; GitHub error bodies are small.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &custom_errors.UpstreamError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("GitHub API call failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}
}
