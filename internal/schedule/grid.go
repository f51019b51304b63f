package schedule

import (
	"fmt"
	"time"
)

// Fill is how a day cell is painted.
type Fill string

const (
	FillNone    Fill = "none"
	FillSolid   Fill = "solid"
	FillSplit   Fill = "split"
	FillInvalid Fill = "invalid"
)

// Handles are the drag affordances a cell exposes. They are only set on
// committed milestones and never while a drag is in progress.
type Handles struct {
	ResizeStart bool `json:"resize_start"`
	ResizeEnd   bool `json:"resize_end"`
	Move        bool `json:"move"`
}

// Cell is the per-render view-model of one grid slot. Padding slots have Day 0.
type Cell struct {
	Day  int    `json:"day"`
	Date string `json:"date,omitempty"`

	// Info classifies the day against the preview list (committed when idle).
	Info *DayInfo `json:"info,omitempty"`
	// Committed classifies the day against committed data only.
	Committed *DayInfo `json:"committed,omitempty"`
	Overlap   *Overlap `json:"overlap,omitempty"`

	Fill       Fill   `json:"fill"`
	Color      Color  `json:"color"`
	SplitColor Color  `json:"split_color"`
	Red        bool   `json:"red"`
	Label      string `json:"label,omitempty"`

	Handles Handles `json:"handles"`
	Shake   bool    `json:"shake"`

	Phase      string `json:"phase,omitempty"`
	PhaseStart bool   `json:"phase_start"`
}

// IsPadding reports whether c is a leading or trailing filler slot.
func (c Cell) IsPadding() bool {
	return c.Day == 0
}

// Month is a Monday-first month grid.
type Month struct {
	Anchor time.Time
	Title  string
	Offset int
	Cells  []Cell
}

// Weeks splits the grid into rows of seven.
func (m Month) Weeks() [][]Cell {
	var weeks [][]Cell
	for i := 0; i < len(m.Cells); i += 7 {
		weeks = append(weeks, m.Cells[i:i+7])
	}
	return weeks
}

// CellAt returns the cell at row and column, or false outside the grid.
func (m Month) CellAt(row, col int) (Cell, bool) {
	if row < 0 || col < 0 || col > 6 {
		return Cell{}, false
	}
	i := row*7 + col
	if i >= len(m.Cells) {
		return Cell{}, false
	}
	return m.Cells[i], true
}

// Input is everything BuildMonth needs for one render.
type Input struct {
	Month time.Time
	// Milestones is the committed list in canonical order.
	Milestones []Milestone
	GoLive     string
	// Session and Preview are set while a drag is active.
	Session *Session
	Preview []Milestone
	// DeniedIdx is the milestone whose cells shake, -1 for none.
	DeniedIdx int
	// PhaseForDay reports a day's phase for boundary rings. Optional.
	PhaseForDay func(day string) string
}

// ReadOnly returns the input for a view that never drags, such as the
// customer calendar.
func ReadOnly(month time.Time, list []Milestone, goLive string) Input {
	return Input{
		Month:      month,
		Milestones: list,
		GoLive:     goLive,
		DeniedIdx:  -1,
	}
}

// BuildMonth lays out the month containing in.Month and paints every day.
//
// Paint priority: invalid drag preview, then a red-flagged milestone, then an
// overlap split on a day both milestones span, then the owner's rainbow color,
// then empty. A day one milestone ends on and the next starts on is solid.
func BuildMonth(in Input) Month {
	first := FirstOfMonth(in.Month)
	days := DaysInMonth(first)
	offset := DayOfWeek(first)

	view := in.Milestones
	if in.Session != nil && in.Preview != nil {
		view = in.Preview
	}
	conflicts := CheckConflicts(view, EffectiveGoLive(in.GoLive, view))

	total := offset + days
	if rem := total % 7; rem != 0 {
		total += 7 - rem
	}
	cells := make([]Cell, total)

	prevPhase := ""
	if in.PhaseForDay != nil {
		prevPhase = in.PhaseForDay(YMD(first.AddDate(0, 0, -1)))
	}

	for d := 1; d <= days; d++ {
		date := YMD(time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, first.Location()))
		c := Cell{Day: d, Date: date, Fill: FillNone}

		if info, ok := GetDayInfo(date, view); ok {
			c.Info = &info
			c.Red = conflicts.IsRed(info.Idx)
			if info.Role == RoleStart || info.Role == RoleBoth {
				c.Label = view[info.Idx].Label
			}
		}
		if committed, ok := GetDayInfo(date, in.Milestones); ok {
			c.Committed = &committed
			if in.Session == nil {
				c.Handles = Handles{
					ResizeStart: committed.Role == RoleStart || committed.Role == RoleBoth,
					ResizeEnd:   committed.Role == RoleEnd || committed.Role == RoleBoth,
					Move:        true,
				}
			}
			c.Shake = in.DeniedIdx >= 0 && committed.Idx == in.DeniedIdx
		}
		if ov, ok := GetOverlapInfo(date, view); ok {
			c.Overlap = &ov
		}

		paint(&c, in.Session, len(view), c.Overlap != nil && sharedBoundary(date, view, *c.Overlap))

		if in.PhaseForDay != nil {
			c.Phase = in.PhaseForDay(date)
			c.PhaseStart = c.Phase != "" && c.Phase != prevPhase
			prevPhase = c.Phase
		}

		cells[offset+d-1] = c
	}
	for i := range cells {
		if cells[i].Fill == "" {
			cells[i].Fill = FillNone
		}
	}

	return Month{
		Anchor: first,
		Title:  FormatMonthYear(first),
		Offset: offset,
		Cells:  cells,
	}
}

// sharedBoundary reports whether the overlapping pair only touches on date:
// one milestone ends there and the other starts there.
func sharedBoundary(date string, list []Milestone, ov Overlap) bool {
	a, b := list[ov.LeftIdx], list[ov.RightIdx]
	aStart, aEnd := normalize(a.StartDate), normalize(a.End())
	bStart, bEnd := normalize(b.StartDate), normalize(b.End())
	return (date == aEnd && date == bStart) || (date == bEnd && date == aStart)
}

// paint colors c. A day two milestones merely abut on belongs to its owner
// and paints solid; only a day both genuinely span paints split.
func paint(c *Cell, s *Session, total int, boundary bool) {
	switch {
	case c.Info != nil && s != nil && s.Invalid && c.Info.Idx == s.MilestoneIdx:
		c.Fill = FillInvalid
		c.Color = InvalidColor
	case c.Info != nil && c.Red:
		c.Fill = FillSolid
		c.Color = InvalidColor
	case c.Overlap != nil && !(boundary && c.Info != nil):
		c.Fill = FillSplit
		c.Color = RainbowColor(c.Overlap.LeftIdx, total)
		c.SplitColor = RainbowColor(c.Overlap.RightIdx, total)
	case c.Info != nil:
		c.Fill = FillSolid
		c.Color = RainbowColor(c.Info.Idx, total)
	}
}

// HandleAt picks the drag type for a press at horizontal fraction frac
// (0 = left edge, 1 = right edge) of c. The left third of a start cell
// resizes the start, the right third of an end cell resizes the end, and
// anywhere else on an owned cell moves the milestone.
func HandleAt(c Cell, frac float64) (DragType, bool) {
	if !c.Handles.Move {
		return "", false
	}
	switch {
	case frac < 1.0/3 && c.Handles.ResizeStart:
		return DragResizeStart, true
	case frac >= 2.0/3 && c.Handles.ResizeEnd:
		return DragResizeEnd, true
	default:
		return DragMove, true
	}
}

// ParseMonth parses a YYYY-MM month into its first day in time.Local.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: month %q", ErrBadDate, s)
	}
	return t, nil
}

// MonthKey formats t as YYYY-MM.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
