// internal/github/client_test.go
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	custom_errors "github-repo-searcher/internal/errors"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// setupTestClient creates a httptest server and a client pointing to it.
func setupTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient("", server.URL, "/search/repositories", 5*time.Second, newTestLogger())
	return client, server
}

func TestBuildSearchURL(t *testing.T) {
	client := NewClient("", "https://api.github.com", "/search/repositories", time.Second, newTestLogger())

	tests := []struct {
		name     string
		query    string
		language string
		sort     string
		want     string
	}{
		{
			name:  "query only",
			query: "golang",
			want:  "https://api.github.com/search/repositories?q=golang&per_page=30",
		},
		{
			name:     "language qualifier appended verbatim, spaces made transport-safe",
			query:    "spring boot",
			language: "Java",
			want:     "https://api.github.com/search/repositories?q=spring%20boot+language:Java&per_page=30",
		},
		{
			name:  "sort passed through",
			query: "golang",
			sort:  "stars",
			want:  "https://api.github.com/search/repositories?q=golang&sort=stars&per_page=30",
		},
		{
			name:     "all parameters",
			query:    "cli",
			language: "Go",
			sort:     "forks",
			want:     "https://api.github.com/search/repositories?q=cli+language:Go&sort=forks&per_page=30",
		},
		{
			name:     "blank language and sort are skipped",
			query:    "cli",
			language: "  ",
			sort:     " ",
			want:     "https://api.github.com/search/repositories?q=cli&per_page=30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, client.buildSearchURL(tt.query, tt.language, tt.sort))
		})
	}
}

func TestClient_Search_Success(t *testing.T) {
	var gotPath, gotRawQuery, gotAccept, gotUserAgent string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRawQuery = r.URL.RawQuery
		gotAccept = r.Header.Get("Accept")
		gotUserAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `{
			"total_count": 2,
			"incomplete_results": false,
			"items": [
				{"id": 123456, "name": "test-repo", "stargazers_count": 100, "forks_count": 50, "updated_at": "2024-06-01T12:00:00Z", "owner": {"login": "testowner"}},
				{"id": 2, "name": "bare-repo"}
			]
		}`)
	})
	client, _ := setupTestClient(t, handler)

	result, err := client.Search(context.Background(), "golang", "Go", "stars")

	require.NoError(t, err)
	assert.Equal(t, "/search/repositories", gotPath)
	assert.Equal(t, "q=golang+language:Go&sort=stars&per_page=30", gotRawQuery)
	assert.Equal(t, "application/vnd.github.v3+json", gotAccept)
	assert.Equal(t, "GitHub-Repository-Searcher", gotUserAgent)

	assert.Equal(t, 2, result.TotalCount)
	assert.False(t, result.IncompleteResults)
	require.Len(t, result.Items, 2)

	first := result.Items[0]
	assert.Equal(t, int64(123456), first.ID)
	assert.Equal(t, "test-repo", first.Name)
	require.NotNil(t, first.StargazersCount)
	assert.Equal(t, int32(100), *first.StargazersCount)
	require.NotNil(t, first.Owner)
	assert.Equal(t, "testowner", first.Owner.Login)

	// Omitted optional fields decode to nil, not zero values.
	bare := result.Items[1]
	assert.Nil(t, bare.StargazersCount)
	assert.Nil(t, bare.ForksCount)
	assert.Nil(t, bare.Owner)
	assert.Nil(t, bare.Description)
	assert.Empty(t, bare.UpdatedAt)
}

func TestClient_Search_StatusMapping(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		wantRateLimited bool
		wantInvalid     bool
		wantContains    []string
	}{
		{
			name:            "403 maps to rate limit",
			status:          http.StatusForbidden,
			wantRateLimited: true,
			wantContains:    []string{"rate limit exceeded"},
		},
		{
			name:         "422 maps to invalid query",
			status:       http.StatusUnprocessableEntity,
			wantInvalid:  true,
			wantContains: []string{"Invalid search query"},
		},
		{
			name:         "other statuses include the status and body excerpt",
			status:       http.StatusBadGateway,
			wantContains: []string{"status 502", "nope"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprintln(w, `{"message": "nope"}`)
			})
			client, _ := setupTestClient(t, handler)

			_, err := client.Search(context.Background(), "golang", "", "")

			var upstream *custom_errors.UpstreamError
			require.ErrorAs(t, err, &upstream)
			assert.Equal(t, tt.status, upstream.Status)
			assert.Equal(t, tt.wantRateLimited, upstream.RateLimited())
			assert.Equal(t, tt.wantInvalid, upstream.InvalidQuery())
			for _, want := range tt.wantContains {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestClient_Search_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient("", server.URL, "/search/repositories", 5*time.Second, newTestLogger())
	server.Close() // Connection refused from here on.

	_, err := client.Search(context.Background(), "golang", "", "")

	var upstream *custom_errors.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, 0, upstream.Status)
	assert.False(t, upstream.RateLimited())
	assert.Contains(t, err.Error(), "failed to call GitHub API")
}

func TestClient_Search_MalformedBody(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `{"total_count": "not-a-number"}`)
	})
	client, _ := setupTestClient(t, handler)

	_, err := client.Search(context.Background(), "golang", "", "")

	var upstream *custom_errors.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Contains(t, err.Error(), "decode")
}
