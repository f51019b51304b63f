package api

import (
	"log/slog"
	"net/http"

	"github.com/hyperengineering/slate/internal/metrics"
	"github.com/hyperengineering/slate/internal/schedule"
	"github.com/hyperengineering/slate/internal/store"
	"github.com/hyperengineering/slate/internal/types"
	"github.com/hyperengineering/slate/internal/validation"
)

// replayDrag runs one complete gesture against the project's committed list:
// press on the grab date, then move to the target. The returned editor holds
// the open session. On failure the response has been written.
func (h *Handler) replayDrag(w http.ResponseWriter, r *http.Request) (*types.Project, *schedule.Editor, bool) {
	p := MustProjectFromContext(r.Context())

	var req types.DragRequest
	if !decodeJSON(w, r, &req) {
		return nil, nil, false
	}
	if errs := validation.ValidateDragRequest(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return nil, nil, false
	}

	list, err := h.store.ListMilestones(r.Context(), p.ID)
	if err != nil {
		slog.Error("load milestones failed", "project_id", p.ID, "error", err)
		MapStoreError(w, r, err)
		return nil, nil, false
	}
	idx := -1
	for i, m := range list {
		if m.ID == req.MilestoneID {
			idx = i
			break
		}
	}
	if idx < 0 {
		MapStoreError(w, r, store.ErrMilestoneNotFound)
		return nil, nil, false
	}

	ed := schedule.NewEditor(list, p.GoLiveDate)
	if err := ed.Start(idx, schedule.DragType(req.Type), req.GrabDate); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, err.Error())
		return nil, nil, false
	}
	ed.Update(req.Target)
	return p, ed, true
}

// DragPreview handles POST /api/v1/projects/{projectID}/drag/preview.
// Nothing is written.
func (h *Handler) DragPreview(w http.ResponseWriter, r *http.Request) {
	_, ed, ok := h.replayDrag(w, r)
	if !ok {
		return
	}
	s, _ := ed.Session()

	writeJSON(w, http.StatusOK, types.DragPreviewResponse{
		MilestoneIdx: s.MilestoneIdx,
		IsInvalid:    s.Invalid,
		Conflicts:    ed.Conflicts().Indices(),
		PrevBoundary: s.PrevBoundary,
		NextBoundary: s.NextBoundary,
		Preview:      ed.Preview(),
	})
}

// DragCommit handles POST /api/v1/projects/{projectID}/drag/commit.
// A valid drop persists the one changed milestone; an invalid drop answers
// 409 and writes nothing.
func (h *Handler) DragCommit(w http.ResponseWriter, r *http.Request) {
	p, ed, ok := h.replayDrag(w, r)
	if !ok {
		return
	}
	conflicts := ed.Conflicts().Indices()

	out, err := ed.Release()
	if err != nil {
		slog.Error("release drag failed", "project_id", p.ID, "error", err)
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	switch out.Kind {
	case schedule.OutcomeRejected:
		metrics.RecordDragOutcome(out.Kind.String(), metrics.SurfaceAPI)
		slog.Info("drag rejected",
			"component", "api",
			"project_id", p.ID,
			"milestone_idx", out.DeniedIdx,
			"target", out.Target,
		)
		WriteProblemDragRejected(w, r, out.DeniedIdx, conflicts)
		return

	case schedule.OutcomeCommitted:
		if err := h.store.UpdateMilestoneDates(r.Context(), p.ID, out.Changed); err != nil {
			if !isNotFound(err) {
				slog.Error("persist drag failed", "project_id", p.ID, "milestone_id", out.Changed.ID, "error", err)
			}
			MapStoreError(w, r, err)
			return
		}
		metrics.RecordMilestoneWrite("update_dates", 1)
		slog.Info("drag committed",
			"component", "api",
			"project_id", p.ID,
			"milestone_id", out.Changed.ID,
			"start_date", out.Changed.StartDate,
			"end_date", out.Changed.EndDate,
		)
	}

	metrics.RecordDragOutcome(out.Kind.String(), metrics.SurfaceAPI)
	resp := types.DragCommitResponse{
		Outcome:    out.Kind.String(),
		Milestones: out.Milestones,
	}
	if out.Kind == schedule.OutcomeCommitted {
		changed := out.Changed
		resp.Changed = &changed
	}
	writeJSON(w, http.StatusOK, resp)
}
