// internal/model/models.go
package model

import "time"

// Repository is a locally mirrored GitHub repository. The ID is the GitHub
// repository id and is the primary key; it is never generated locally.
type Repository struct {
	ID          int64
	Name        string
	Description *string
	Owner       string
	Language    *string
	Stars       int32
	Forks       int32
	// LastUpdated is the upstream updated_at timestamp.
	LastUpdated time.Time
	// CreatedAt is set once at first insert and never modified.
	CreatedAt time.Time
	// UpdatedAt is refreshed on every upsert that touches the row.
	UpdatedAt time.Time
}

// RepositoryDto is the API projection of a stored repository.
type RepositoryDto struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Owner       string    `json:"owner"`
	Language    *string   `json:"language"`
	Stars       int32     `json:"stars"`
	Forks       int32     `json:"forks"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// ToDto projects a stored repository to its API shape.
func (r Repository) ToDto() RepositoryDto {
	return RepositoryDto{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Owner:       r.Owner,
		Language:    r.Language,
		Stars:       r.Stars,
		Forks:       r.Forks,
		LastUpdated: r.LastUpdated,
	}
}

// SearchRequest is the body of POST /api/github/search.
type SearchRequest struct {
	Query    string `json:"query"`
	Language string `json:"language,omitempty"`
	Sort     string `json:"sort,omitempty"`
}

// SearchResponse is returned by the search endpoint.
type SearchResponse struct {
	Message      string          `json:"message"`
	Repositories []RepositoryDto `json:"repositories"`
}

// RepositoryListResponse is returned by the repositories listing endpoint.
type RepositoryListResponse struct {
	Repositories []RepositoryDto `json:"repositories"`
}
