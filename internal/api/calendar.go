package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"github.com/hyperengineering/slate/internal/render"
	"github.com/hyperengineering/slate/internal/schedule"
	"github.com/hyperengineering/slate/internal/types"
	"github.com/hyperengineering/slate/internal/validation"
)

// customerMonth builds the read-only grid for the ?month= query, defaulting
// to the current month.
func (h *Handler) customerMonth(w http.ResponseWriter, r *http.Request) (schedule.Month, []schedule.Milestone, schedule.Conflicts, bool) {
	p := MustProjectFromContext(r.Context())

	anchor := time.Now()
	if q := r.URL.Query().Get("month"); q != "" {
		if verr := validation.ValidateMonth("month", q); verr != nil {
			WriteProblemWithErrors(w, r, "Request contains invalid fields", []validation.ValidationError{*verr})
			return schedule.Month{}, nil, schedule.Conflicts{}, false
		}
		t, err := schedule.ParseMonth(q)
		if err != nil {
			MapStoreError(w, r, err)
			return schedule.Month{}, nil, schedule.Conflicts{}, false
		}
		anchor = t
	}

	list, goLive, err := h.loadTimeline(r, p)
	if err != nil {
		slog.Error("load calendar failed", "project_id", p.ID, "error", err)
		MapStoreError(w, r, err)
		return schedule.Month{}, nil, schedule.Conflicts{}, false
	}

	in := schedule.ReadOnly(anchor, list, p.GoLiveDate)
	in.PhaseForDay = schedule.PhaseLookup(list)
	return schedule.BuildMonth(in), list, schedule.CheckConflicts(list, goLive), true
}

func calendarCell(c schedule.Cell) types.CalendarCell {
	out := types.CalendarCell{
		Day:        c.Day,
		Date:       c.Date,
		Fill:       string(c.Fill),
		Red:        c.Red,
		Label:      c.Label,
		Phase:      c.Phase,
		PhaseStart: c.PhaseStart,
	}
	if c.Fill == "" {
		out.Fill = string(schedule.FillNone)
	}
	if c.Fill != schedule.FillNone && c.Fill != "" {
		out.Color = c.Color.Hex()
	}
	if c.Fill == schedule.FillSplit {
		out.SplitColor = c.SplitColor.Hex()
	}
	if c.Info != nil {
		idx := c.Info.Idx
		out.MilestoneIdx = &idx
		out.Role = string(c.Info.Role)
	}
	return out
}

// Calendar handles GET /api/v1/projects/{projectID}/calendar
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	m, list, conflicts, ok := h.customerMonth(w, r)
	if !ok {
		return
	}

	weeks := m.Weeks()
	resp := types.CalendarResponse{
		ProjectID: MustProjectFromContext(r.Context()).ID,
		Month:     schedule.MonthKey(m.Anchor),
		Title:     m.Title,
		Prev:      schedule.MonthKey(schedule.AddMonths(m.Anchor, -1)),
		Next:      schedule.MonthKey(schedule.AddMonths(m.Anchor, 1)),
		Offset:    m.Offset,
		Weeks:     make([][]types.CalendarCell, len(weeks)),
		Legend:    types.MilestoneViews(list, conflicts),
	}
	for i, week := range weeks {
		row := make([]types.CalendarCell, len(week))
		for j, c := range week {
			row[j] = calendarCell(c)
		}
		resp.Weeks[i] = row
	}
	writeJSON(w, http.StatusOK, resp)
}

// CalendarSVG handles GET /api/v1/projects/{projectID}/calendar.svg
func (h *Handler) CalendarSVG(w http.ResponseWriter, r *http.Request) {
	m, list, conflicts, ok := h.customerMonth(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := render.MonthSVG(&buf, m, render.Legend(list, conflicts)); err != nil {
		slog.Error("render calendar failed", "error", err)
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(buf.Bytes())
}
