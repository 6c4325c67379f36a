// Package httphandler implements the JSON API driving adapter.
package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/reviewrot/internal/application"
	"github.com/ericfisherdev/reviewrot/internal/domain/model"
	"github.com/ericfisherdev/reviewrot/internal/domain/port/driven"
)

// FeedLoader runs one page load. *application.FeedService satisfies it.
type FeedLoader interface {
	Load(ctx context.Context, opts application.PageOptions) (model.Page, error)
}

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	loader         FeedLoader
	repoStore      driven.RepoStore
	thresholdStore driven.ThresholdStore
	defaults       model.SeverityTable
	logger         *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. defaults is
// the configured threshold table reported when nothing is stored.
func NewHandler(
	loader FeedLoader,
	repoStore driven.RepoStore,
	thresholdStore driven.ThresholdStore,
	defaults model.SeverityTable,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		loader:         loader,
		repoStore:      repoStore,
		thresholdStore: thresholdStore,
		defaults:       defaults,
		logger:         logger,
	}
}

// RegisterAPIRoutes registers all /api/v1 routes on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/feed", h.Feed)
	mux.HandleFunc("GET /api/v1/repos", h.ListRepos)
	mux.HandleFunc("POST /api/v1/repos", h.AddRepo)
	mux.HandleFunc("DELETE /api/v1/repos/{owner}/{repo}", h.RemoveRepo)
	mux.HandleFunc("GET /api/v1/thresholds", h.GetThresholds)
	mux.HandleFunc("PUT /api/v1/thresholds", h.PutThresholds)
	mux.HandleFunc("GET /api/v1/health", h.Health)
}

// NewServeMux creates an http.Handler with the API routes registered and
// wrapped with the standard middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterAPIRoutes(mux, h)
	return ApplyMiddleware(mux, logger)
}

// Feed runs one page load and returns the rendered entries. It accepts the
// same page options as the HTML page. Any fetch failure is reported as 502
// without detail; the cause is logged.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	opts, err := application.PageOptionsFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.loader.Load(r.Context(), opts)
	if err != nil {
		if errors.Is(err, model.ErrFeedUnavailable) {
			writeError(w, http.StatusBadGateway, "feed unavailable")
			return
		}
		h.logger.Error("failed to load feed", "error", err, "request_id", RequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toFeedResponse(page))
}

// ListRepos returns all watched repositories.
func (h *Handler) ListRepos(w http.ResponseWriter, r *http.Request) {
	repos, err := h.repoStore.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list repos", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]RepoResponse, 0, len(repos))
	for _, repo := range repos {
		resp = append(resp, toRepoResponse(repo))
	}

	writeJSON(w, http.StatusOK, resp)
}

// AddRepo adds a repository to the watch list. Its pull requests show up on
// the next page load.
func (h *Handler) AddRepo(w http.ResponseWriter, r *http.Request) {
	var req AddRepoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !isValidRepoName(req.FullName) {
		writeError(w, http.StatusBadRequest, "invalid repository name: expected owner/repo format")
		return
	}

	parts := strings.SplitN(req.FullName, "/", 2)
	repo := model.Repository{
		FullName: req.FullName,
		Owner:    parts[0],
		Name:     parts[1],
		AddedAt:  time.Now().UTC(),
	}

	if err := h.repoStore.Add(r.Context(), repo); err != nil {
		if errors.Is(err, driven.ErrRepoAlreadyExists) {
			writeError(w, http.StatusConflict, "repository already exists")
			return
		}
		h.logger.Error("failed to add repo", "repo", req.FullName, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toRepoResponse(repo))
}

// RemoveRepo removes a repository from the watch list.
func (h *Handler) RemoveRepo(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")
	repo := r.PathValue("repo")
	fullName := owner + "/" + repo

	if err := h.repoStore.Remove(r.Context(), fullName); err != nil {
		if errors.Is(err, driven.ErrRepoNotFound) {
			writeError(w, http.StatusNotFound, "repository not found")
			return
		}
		h.logger.Error("failed to remove repo", "repo", fullName, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetThresholds returns the severity table in effect.
func (h *Handler) GetThresholds(w http.ResponseWriter, r *http.Request) {
	stored, err := h.thresholdStore.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list thresholds", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := ThresholdsResponse{Source: "stored", Thresholds: toThresholdResponses(stored)}
	if len(stored) == 0 {
		resp = ThresholdsResponse{Source: "config", Thresholds: toThresholdResponses(h.defaults)}
	}

	writeJSON(w, http.StatusOK, resp)
}

// PutThresholds replaces the stored severity table. An empty list clears it,
// reverting to the configured defaults.
func (h *Handler) PutThresholds(w http.ResponseWriter, r *http.Request) {
	var req PutThresholdsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	table := make(model.SeverityTable, 0, len(req.Thresholds))
	for _, th := range req.Thresholds {
		minAge, err := time.ParseDuration(th.MinAge)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid min_age "+th.MinAge)
			return
		}
		table = append(table, model.SeverityThreshold{Severity: model.Severity(th.Severity), MinAge: minAge})
	}

	if err := table.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.thresholdStore.Replace(r.Context(), table); err != nil {
		h.logger.Error("failed to replace thresholds", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.GetThresholds(w, r)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// isValidRepoName validates that name is in owner/repo format where each part
// contains only alphanumeric characters, hyphens, dots, or underscores.
func isValidRepoName(name string) bool {
	if !application.IsValidRepoName(name) {
		return false
	}

	for _, ch := range name {
		if ch != '/' && !isValidRepoChar(ch) {
			return false
		}
	}

	return true
}

// isValidRepoChar returns true if the rune is allowed in a repository owner or name.
func isValidRepoChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '-' || ch == '.' || ch == '_'
}
