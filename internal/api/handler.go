// internal/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	custom_errors "github-repo-searcher/internal/errors"
	"github-repo-searcher/internal/model"
)

// GithubService is the application service the handlers delegate to.
type GithubService interface {
	SearchAndSave(ctx context.Context, req model.SearchRequest) (*model.SearchResponse, error)
	ListStored(ctx context.Context, language *string, minStars *int32, sort string) (*model.RepositoryListResponse, error)
}

// ErrorResponse is the envelope returned on search-endpoint failures.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
}

// Handler is the container for API dependencies.
type Handler struct {
	service GithubService
	logger  *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(service GithubService, logger *slog.Logger) http.Handler {
	h := &Handler{
		service: service,
		logger:  logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// API Routes
	r.Get("/health", h.healthCheck)
	r.Route("/api/github", func(r chi.Router) {
		r.Post("/search", h.searchRepositories)
		r.Get("/repositories", h.getRepositories)
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// searchRepositories triggers a GitHub search and persists the results.
// POST /api/github/search
func (h *Handler) searchRepositories(w http.ResponseWriter, r *http.Request) {
	var req model.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, http.StatusBadRequest, "Validation failed", "Request body must be valid JSON")
		return
	}

	resp, err := h.service.SearchAndSave(r.Context(), req)
	if err != nil {
		var invalidInput *custom_errors.InvalidInputError
		if errors.As(err, &invalidInput) {
			respondWithError(w, r, http.StatusBadRequest, "Invalid argument", invalidInput.Message)
			return
		}
		h.logger.Error("Search and save failed", "error", err)
		respondWithError(w, r, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// getRepositories lists stored repositories with optional filters.
// GET /api/github/repositories?language=&minStars=&sort=
//
// Failures reuse the list response shape with an empty repositories array
// rather than the error envelope; the search endpoint is the one that
// reports error detail.
func (h *Handler) getRepositories(w http.ResponseWriter, r *http.Request) {
	var language *string
	if v := r.URL.Query().Get("language"); v != "" {
		language = &v
	}

	var minStars *int32
	if v := r.URL.Query().Get("minStars"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			respondWithJSON(w, http.StatusBadRequest, model.RepositoryListResponse{Repositories: []model.RepositoryDto{}})
			return
		}
		n32 := int32(n)
		minStars = &n32
	}

	sort := r.URL.Query().Get("sort")

	resp, err := h.service.ListStored(r.Context(), language, minStars, sort)
	if err != nil {
		var invalidInput *custom_errors.InvalidInputError
		if errors.As(err, &invalidInput) {
			respondWithJSON(w, http.StatusBadRequest, model.RepositoryListResponse{Repositories: []model.RepositoryDto{}})
			return
		}
		h.logger.Error("Failed to list stored repositories", "error", err)
		respondWithJSON(w, http.StatusInternalServerError, model.RepositoryListResponse{Repositories: []model.RepositoryDto{}})
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

func respondWithError(w http.ResponseWriter, r *http.Request, code int, category, message string) {
	respondWithJSON(w, code, ErrorResponse{
		Error:     category,
		Message:   message,
		Timestamp: time.Now(),
		Path:      r.URL.Path,
	})
}
