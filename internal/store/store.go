// internal/store/store.go
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	custom_errors "github-repo-searcher/internal/errors"
	"github-repo-searcher/internal/model"
)

// ErrNotFound is returned by Get when no row matches the id.
var ErrNotFound = errors.New("repository not found")

// SortKey names a column the repository listing can be ordered by.
type SortKey string

const (
	SortByStars   SortKey = "stars"
	SortByForks   SortKey = "forks"
	SortByUpdated SortKey = "updated"
)

// sortColumns maps each sort key to the column it orders by. Only values
// from this table are ever interpolated into the list query.
var sortColumns = map[SortKey]string{
	SortByStars:   "stars",
	SortByForks:   "forks",
	SortByUpdated: "last_updated",
}

// ParseSortKey validates a sort keyword coming from user input.
func ParseSortKey(s string) (SortKey, error) {
	key := SortKey(s)
	if _, ok := sortColumns[key]; !ok {
		return "", custom_errors.NewInvalidInput("Invalid sort parameter. Must be 'stars', 'forks', or 'updated'")
	}
	return key, nil
}

// ListParams are the optional filters for List. Nil means unrestricted.
type ListParams struct {
	Language *string
	MinStars *int32
	Sort     SortKey
}

// DBTX is the subset of pgxpool.Pool / pgx.Tx the store needs.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists repository records in Postgres.
type Store struct {
	db     DBTX
	logger *slog.Logger
}

// NewStore creates a Store backed by the given connection pool or transaction.
func NewStore(db DBTX, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

const repositoryColumns = `id, name, description, owner, language, stars, forks, last_updated, created_at, updated_at`

// Exists reports whether a repository row with the given id is stored.
func (s *Store) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM repositories WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check repository existence: %w", err)
	}
	return exists, nil
}

// Get fetches a single repository by id, returning ErrNotFound when absent.
func (s *Store) Get(ctx context.Context, id int64) (model.Repository, error) {
	row := s.db.QueryRow(ctx, `SELECT `+repositoryColumns+` FROM repositories WHERE id = $1`, id)
	repo, err := scanRepository(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Repository{}, ErrNotFound
	}
	if err != nil {
		return model.Repository{}, fmt.Errorf("get repository: %w", err)
	}
	return repo, nil
}

// Upsert inserts the candidate or, if a row with its id already exists,
// overwrites all mutable fields in place. created_at is set only on insert;
// updated_at is refreshed either way. The whole operation is one statement,
// so concurrent ingests of the same id serialize inside Postgres.
func (s *Store) Upsert(ctx context.Context, candidate model.Repository) (model.Repository, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO repositories (id, name, description, owner, language, stars, forks, last_updated, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			owner = EXCLUDED.owner,
			language = EXCLUDED.language,
			stars = EXCLUDED.stars,
			forks = EXCLUDED.forks,
			last_updated = EXCLUDED.last_updated,
			updated_at = now()
		RETURNING `+repositoryColumns,
		candidate.ID,
		candidate.Name,
		candidate.Description,
		candidate.Owner,
		candidate.Language,
		candidate.Stars,
		candidate.Forks,
		candidate.LastUpdated,
	)

	repo, err := scanRepository(row)
	if err != nil {
		return model.Repository{}, fmt.Errorf("upsert repository %d: %w", candidate.ID, err)
	}
	return repo, nil
}

// List returns stored repositories matching the filters, ordered descending
// by the sort key's column. Ties are broken by id descending so output is
// deterministic.
func (s *Store) List(ctx context.Context, params ListParams) ([]model.Repository, error) {
	column, ok := sortColumns[params.Sort]
	if !ok {
		return nil, custom_errors.NewInvalidInput("Invalid sort parameter. Must be 'stars', 'forks', or 'updated'")
	}

	query := fmt.Sprintf(`
		SELECT `+repositoryColumns+`
		FROM repositories
		WHERE ($1::text IS NULL OR language = $1)
		  AND ($2::int IS NULL OR stars >= $2)
		ORDER BY %s DESC, id DESC`, column)

	rows, err := s.db.Query(ctx, query, params.Language, params.MinStars)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	defer rows.Close()

	repos := []model.Repository{}
	for rows.Next() {
		repo, err := scanRepository(rows)
		if err != nil {
			return nil, fmt.Errorf("scan repository row: %w", err)
		}
		repos = append(repos, repo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}

	return repos, nil
}

func scanRepository(row pgx.Row) (model.Repository, error) {
	var r model.Repository
	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.Description,
		&r.Owner,
		&r.Language,
		&r.Stars,
		&r.Forks,
		&r.LastUpdated,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}
