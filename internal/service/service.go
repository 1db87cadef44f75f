// internal/service/service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	custom_errors "github-repo-searcher/internal/errors"
	"github-repo-searcher/internal/github"
	"github-repo-searcher/internal/model"
	"github-repo-searcher/internal/store"
)

const (
	// successMessage is the fixed status line of a successful search response.
	successMessage = "Repositories fetched and saved successfully"

	// unknownOwner is stored when the upstream payload carries no owner login.
	unknownOwner = "Unknown"

	defaultSort = "stars"
)

// SearchClient is the upstream search dependency.
type SearchClient interface {
	Search(ctx context.Context, query, language, sort string) (*github.SearchResult, error)
}

// RecordStore is the persistence dependency.
type RecordStore interface {
	Upsert(ctx context.Context, candidate model.Repository) (model.Repository, error)
	List(ctx context.Context, params ListParams) ([]model.Repository, error)
}

// ListParams aliases the store's filter type so callers of the service don't
// import the store package directly.
type ListParams = store.ListParams

// Service orchestrates search ingestion and stored-repository queries.
type Service struct {
	client SearchClient
	store  RecordStore
	logger *slog.Logger
}

// NewService creates a new Service instance.
func NewService(client SearchClient, recordStore RecordStore, logger *slog.Logger) *Service {
	return &Service{
		client: client,
		store:  recordStore,
		logger: logger,
	}
}

// SearchAndSave forwards the query to GitHub, upserts every returned item
// into the store in upstream order, and returns the persisted rows as DTOs.
// An absent or blank sort hint defaults to "stars" before the upstream call.
// An empty upstream result is a success with an empty list. A store failure
// mid-batch aborts the call; rows already upserted stay committed, which is
// fine because re-running the same search converges to the same state.
func (s *Service) SearchAndSave(ctx context.Context, req model.SearchRequest) (*model.SearchResponse, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, custom_errors.NewInvalidInput("Query cannot be blank")
	}

	sort := req.Sort
	if strings.TrimSpace(sort) == "" {
		sort = defaultSort
	}

	logger := s.logger.With("query", req.Query, "language", req.Language, "sort", sort)
	logger.Info("Searching GitHub repositories")

	result, err := s.client.Search(ctx, req.Query, req.Language, sort)
	if err != nil {
		return nil, fmt.Errorf("search github repositories: %w", err)
	}

	now := time.Now()
	dtos := make([]model.RepositoryDto, 0, len(result.Items))
	for _, item := range result.Items {
		saved, err := s.store.Upsert(ctx, mapItem(item, now))
		if err != nil {
			return nil, fmt.Errorf("save repository %d: %w", item.ID, err)
		}
		dtos = append(dtos, saved.ToDto())
	}

	logger.Info("Saved search results", "total_count", result.TotalCount, "saved", len(dtos))

	return &model.SearchResponse{
		Message:      successMessage,
		Repositories: dtos,
	}, nil
}

// ListStored returns stored repositories filtered by language and minimum
// star count and sorted by the given key. A blank sort defaults to "stars";
// anything outside {stars, forks, updated} fails validation before the store
// is touched.
func (s *Service) ListStored(ctx context.Context, language *string, minStars *int32, sort string) (*model.RepositoryListResponse, error) {
	if strings.TrimSpace(sort) == "" {
		sort = defaultSort
	}

	key, err := store.ParseSortKey(sort)
	if err != nil {
		return nil, err
	}

	repos, err := s.store.List(ctx, ListParams{
		Language: language,
		MinStars: minStars,
		Sort:     key,
	})
	if err != nil {
		return nil, fmt.Errorf("retrieve stored repositories: %w", err)
	}

	dtos := make([]model.RepositoryDto, 0, len(repos))
	for _, r := range repos {
		dtos = append(dtos, r.ToDto())
	}

	return &model.RepositoryListResponse{Repositories: dtos}, nil
}

// mapItem translates an upstream search item into a storable record.
// Defaults applied here, and only here:
//   - owner: login of the owner sub-object, or "Unknown" when the sub-object
//     or its login is absent
//   - stars/forks: 0 when the upstream counter is absent
//   - last updated: parsed from the RFC 3339 updated_at string; when the
//     string is absent or unparseable, the ingest time is substituted instead
//     of failing the batch
func mapItem(item github.Item, now time.Time) model.Repository {
	owner := unknownOwner
	if item.Owner != nil && item.Owner.Login != "" {
		owner = item.Owner.Login
	}

	var stars, forks int32
	if item.StargazersCount != nil {
		stars = *item.StargazersCount
	}
	if item.ForksCount != nil {
		forks = *item.ForksCount
	}

	lastUpdated := now
	if item.UpdatedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, item.UpdatedAt); err == nil {
			lastUpdated = parsed
		}
	}

	return model.Repository{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Owner:       owner,
		Language:    item.Language,
		Stars:       stars,
		Forks:       forks,
		LastUpdated: lastUpdated,
	}
}
