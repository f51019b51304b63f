package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/slate/internal/metrics"
	"github.com/hyperengineering/slate/internal/schedule"
	"github.com/hyperengineering/slate/internal/types"
	"github.com/hyperengineering/slate/internal/validation"
)

func (h *Handler) milestoneList(w http.ResponseWriter, r *http.Request, status int, grouped bool) {
	p := MustProjectFromContext(r.Context())

	list, goLive, err := h.loadTimeline(r, p)
	if err != nil {
		slog.Error("list milestones failed", "project_id", p.ID, "error", err)
		MapStoreError(w, r, err)
		return
	}
	conflicts := schedule.CheckConflicts(list, goLive)

	resp := types.MilestoneListResponse{
		ProjectID:  p.ID,
		GoLiveDate: goLive,
		Milestones: types.MilestoneViews(list, conflicts),
		Conflicts:  conflicts.Indices(),
	}
	if grouped {
		for _, g := range schedule.GroupByPhase(list) {
			ids := make([]string, len(g.Milestones))
			for i, m := range g.Milestones {
				ids[i] = m.ID
			}
			resp.Groups = append(resp.Groups, types.PhaseGroupView{
				Phase:        g.Phase,
				FirstIndex:   g.FirstIndex,
				MilestoneIDs: ids,
			})
		}
	}
	writeJSON(w, status, resp)
}

// ListMilestones handles GET /api/v1/projects/{projectID}/milestones
func (h *Handler) ListMilestones(w http.ResponseWriter, r *http.Request) {
	h.milestoneList(w, r, http.StatusOK, r.URL.Query().Get("grouped") == "true")
}

// AddMilestone handles POST /api/v1/projects/{projectID}/milestones
func (h *Handler) AddMilestone(w http.ResponseWriter, r *http.Request) {
	p := MustProjectFromContext(r.Context())

	var req types.NewMilestone
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := validation.ValidateNewMilestone(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	m, err := h.store.InsertMilestone(r.Context(), p.ID, req)
	if err != nil {
		if !isNotFound(err) {
			slog.Error("insert milestone failed", "project_id", p.ID, "error", err)
		}
		MapStoreError(w, r, err)
		return
	}
	metrics.RecordMilestoneWrite("insert", 1)
	slog.Info("milestone added", "component", "api", "project_id", p.ID, "milestone_id", m.ID)
	writeJSON(w, http.StatusCreated, m)
}

// DeleteMilestone handles DELETE /api/v1/projects/{projectID}/milestones/{milestoneID}
func (h *Handler) DeleteMilestone(w http.ResponseWriter, r *http.Request) {
	p := MustProjectFromContext(r.Context())
	id := chi.URLParam(r, "milestoneID")

	if errs := validation.ValidateULID("milestoneID", id); errs != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Invalid milestone ID format")
		return
	}

	if err := h.store.DeleteMilestone(r.Context(), p.ID, id); err != nil {
		if !isNotFound(err) {
			slog.Error("delete milestone failed", "project_id", p.ID, "milestone_id", id, "error", err)
		}
		MapStoreError(w, r, err)
		return
	}
	metrics.RecordMilestoneWrite("delete", 1)
	w.WriteHeader(http.StatusNoContent)
}

// PlanMilestones handles POST /api/v1/projects/{projectID}/milestones/plan.
// It appends a draft timeline built from a template and returns the full list.
func (h *Handler) PlanMilestones(w http.ResponseWriter, r *http.Request) {
	p := MustProjectFromContext(r.Context())

	var req types.PlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := validation.ValidatePlanRequest(req, h.templates.TemplateNames()); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	tpl, _ := h.templates.Template(req.Template)
	start, err := schedule.ParseLocal(req.Start)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	planned := schedule.PlanTimeline(start, tpl)
	entries := make([]types.NewMilestone, len(planned))
	for i, m := range planned {
		entries[i] = types.NewMilestone{
			Label:     m.Label,
			Phase:     m.Phase,
			StartDate: m.StartDate,
			EndDate:   m.EndDate,
		}
	}

	if _, err := h.store.InsertMilestones(r.Context(), p.ID, entries); err != nil {
		if !isNotFound(err) {
			slog.Error("plan milestones failed", "project_id", p.ID, "error", err)
		}
		MapStoreError(w, r, err)
		return
	}
	metrics.RecordMilestoneWrite("plan", len(entries))
	slog.Info("timeline planned", "component", "api", "project_id", p.ID, "template", tpl.Name, "count", len(entries))

	h.milestoneList(w, r, http.StatusCreated, false)
}
