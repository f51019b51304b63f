package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/slate/internal/schedule"
	"github.com/hyperengineering/slate/internal/store"
	"github.com/hyperengineering/slate/internal/types"
)

// Templates resolves named timeline templates. *config.Config satisfies it.
type Templates interface {
	Template(name string) (schedule.Template, bool)
	TemplateNames() []string
}

// Handler implements the API handlers
type Handler struct {
	store     store.Store
	templates Templates
	apiKey    string
	version   string
}

// NewHandler creates a new Handler. An empty apiKey leaves the admin routes open.
func NewHandler(s store.Store, templates Templates, apiKey, version string) *Handler {
	return &Handler{
		store:     s,
		templates: templates,
		apiKey:    apiKey,
		version:   version,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// decodeJSON reads the request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return false
	}
	return true
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		slog.Error("health check failed", "error", err)
		WriteProblem(w, r, http.StatusServiceUnavailable, "Store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:         "healthy",
		Version:        h.version,
		ProjectCount:   stats.ProjectCount,
		MilestoneCount: stats.MilestoneCount,
		SchemaVersion:  stats.SchemaVersion,
	})
}

// ProjectCtx loads the {projectID} route parameter into the request context,
// answering 404 for an unknown project.
func (h *Handler) ProjectCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "projectID")
		p, err := h.store.GetProject(r.Context(), id)
		if err != nil {
			if !isNotFound(err) {
				slog.Error("load project failed", "project_id", id, "error", err)
			}
			MapStoreError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithProject(r.Context(), p)))
	})
}

// loadTimeline returns the project's canonical milestone list and effective
// go-live date.
func (h *Handler) loadTimeline(r *http.Request, p *types.Project) ([]schedule.Milestone, string, error) {
	list, err := h.store.ListMilestones(r.Context(), p.ID)
	if err != nil {
		return nil, "", err
	}
	return list, schedule.EffectiveGoLive(p.GoLiveDate, list), nil
}

