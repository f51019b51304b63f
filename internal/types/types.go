package types

import (
	"time"

	"github.com/hyperengineering/slate/internal/schedule"
)

// Project is a client engagement whose timeline is a list of milestones.
type Project struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Client string `json:"client,omitempty"`
	// GoLiveDate is the designated go-live date (YYYY-MM-DD). When empty the
	// Go Live milestone's start is used.
	GoLiveDate string    `json:"go_live_date,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewProject is the input for creating a project.
type NewProject struct {
	Name       string `json:"name"`
	Client     string `json:"client,omitempty"`
	GoLiveDate string `json:"go_live_date,omitempty"`
}

// ProjectUpdate is a partial update. Nil fields are left unchanged; an empty
// GoLiveDate clears the designated date.
type ProjectUpdate struct {
	Name       *string `json:"name,omitempty"`
	Client     *string `json:"client,omitempty"`
	GoLiveDate *string `json:"go_live_date,omitempty"`
}

// ProjectListResponse is the response for GET /api/v1/projects.
type ProjectListResponse struct {
	Projects []Project `json:"projects"`
}

// NewMilestone is the input for adding a milestone to a project.
type NewMilestone struct {
	Label     string `json:"label"`
	Phase     string `json:"phase,omitempty"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date,omitempty"`
}

// MilestoneView is a milestone as listed by the API, with its canonical
// index and derived presentation fields.
type MilestoneView struct {
	schedule.Milestone
	Index       int    `json:"index"`
	Color       string `json:"color"`
	HSL         string `json:"hsl"`
	WorkingDays int    `json:"working_days"`
	Red         bool   `json:"red"`
}

// PhaseGroupView is a contiguous run of milestones sharing a phase.
type PhaseGroupView struct {
	Phase        string   `json:"phase"`
	FirstIndex   int      `json:"first_index"`
	MilestoneIDs []string `json:"milestone_ids"`
}

// MilestoneListResponse is the response for GET .../milestones.
type MilestoneListResponse struct {
	ProjectID  string           `json:"project_id"`
	GoLiveDate string           `json:"go_live_date,omitempty"`
	Milestones []MilestoneView  `json:"milestones"`
	Conflicts  []int            `json:"conflicts"`
	Groups     []PhaseGroupView `json:"groups,omitempty"`
}

// PlanRequest asks for a draft timeline built from a named template.
type PlanRequest struct {
	Start    string `json:"start"`
	Template string `json:"template,omitempty"`
}

// DragRequest describes one complete pointer gesture: press on GrabDate,
// drag to Target, release.
type DragRequest struct {
	MilestoneID string `json:"milestone_id"`
	Type        string `json:"type"`
	// GrabDate is the day cell pressed. Defaults to the dragged boundary.
	GrabDate string `json:"grab_date,omitempty"`
	Target   string `json:"target"`
}

// DragPreviewResponse is the live preview of a drag without committing it.
type DragPreviewResponse struct {
	MilestoneIdx int                  `json:"milestone_idx"`
	IsInvalid    bool                 `json:"is_invalid"`
	Conflicts    []int                `json:"conflicts"`
	PrevBoundary string               `json:"prev_boundary,omitempty"`
	NextBoundary string               `json:"next_boundary,omitempty"`
	Preview      []schedule.Milestone `json:"preview"`
}

// DragCommitResponse is returned when a drag resolves without rejection.
type DragCommitResponse struct {
	Outcome    string               `json:"outcome"`
	Changed    *schedule.Milestone  `json:"changed,omitempty"`
	Milestones []schedule.Milestone `json:"milestones"`
}

// CalendarCell is one day slot in the customer calendar. Padding slots have Day 0.
type CalendarCell struct {
	Day          int    `json:"day"`
	Date         string `json:"date,omitempty"`
	Fill         string `json:"fill"`
	Color        string `json:"color,omitempty"`
	SplitColor   string `json:"split_color,omitempty"`
	Red          bool   `json:"red,omitempty"`
	Label        string `json:"label,omitempty"`
	Role         string `json:"role,omitempty"`
	MilestoneIdx *int   `json:"milestone_idx,omitempty"`
	Phase        string `json:"phase,omitempty"`
	PhaseStart   bool   `json:"phase_start,omitempty"`
}

// CalendarResponse is a read-only month grid.
type CalendarResponse struct {
	ProjectID string           `json:"project_id"`
	Month     string           `json:"month"`
	Title     string           `json:"title"`
	Prev      string           `json:"prev"`
	Next      string           `json:"next"`
	Offset    int              `json:"offset"`
	Weeks     [][]CalendarCell `json:"weeks"`
	Legend    []MilestoneView  `json:"legend"`
}

// StoreStats contains database statistics.
type StoreStats struct {
	ProjectCount   int64 `json:"project_count"`
	MilestoneCount int64 `json:"milestone_count"`
	SchemaVersion  int64 `json:"schema_version"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	ProjectCount   int64  `json:"project_count"`
	MilestoneCount int64  `json:"milestone_count"`
	SchemaVersion  int64  `json:"schema_version"`
}

// MilestoneViews decorates list, which must be in canonical order, with its
// rainbow colors and the red flags in conflicts.
func MilestoneViews(list []schedule.Milestone, conflicts schedule.Conflicts) []MilestoneView {
	views := make([]MilestoneView, len(list))
	for i, m := range list {
		c := schedule.RainbowColor(i, len(list))
		views[i] = MilestoneView{
			Milestone:   m,
			Index:       i,
			Color:       c.Hex(),
			HSL:         c.String(),
			WorkingDays: m.WorkingDays(),
			Red:         conflicts.IsRed(i),
		}
	}
	return views
}
