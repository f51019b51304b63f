package api

import (
	"log/slog"
	"net/http"

	"github.com/hyperengineering/slate/internal/types"
	"github.com/hyperengineering/slate/internal/validation"
)

// CreateProject handles POST /api/v1/projects
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req types.NewProject
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := validation.ValidateNewProject(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	p, err := h.store.CreateProject(r.Context(), req)
	if err != nil {
		slog.Error("create project failed", "error", err)
		MapStoreError(w, r, err)
		return
	}
	slog.Info("project created", "component", "api", "project_id", p.ID)
	writeJSON(w, http.StatusCreated, p)
}

// ListProjects handles GET /api/v1/projects
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListProjects(r.Context())
	if err != nil {
		slog.Error("list projects failed", "error", err)
		MapStoreError(w, r, err)
		return
	}
	if projects == nil {
		projects = []types.Project{}
	}
	writeJSON(w, http.StatusOK, types.ProjectListResponse{Projects: projects})
}

// GetProject handles GET /api/v1/projects/{projectID}
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MustProjectFromContext(r.Context()))
}

// UpdateProject handles PATCH /api/v1/projects/{projectID}
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	p := MustProjectFromContext(r.Context())

	var req types.ProjectUpdate
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := validation.ValidateProjectUpdate(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	updated, err := h.store.UpdateProject(r.Context(), p.ID, req)
	if err != nil {
		if !isNotFound(err) {
			slog.Error("update project failed", "project_id", p.ID, "error", err)
		}
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteProject handles DELETE /api/v1/projects/{projectID}
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	p := MustProjectFromContext(r.Context())

	if err := h.store.DeleteProject(r.Context(), p.ID); err != nil {
		if !isNotFound(err) {
			slog.Error("delete project failed", "project_id", p.ID, "error", err)
		}
		MapStoreError(w, r, err)
		return
	}
	slog.Info("project deleted", "component", "api", "project_id", p.ID)
	w.WriteHeader(http.StatusNoContent)
}
