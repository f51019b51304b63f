package schedule

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrSessionActive is returned when a drag starts while another is in progress.
	ErrSessionActive = errors.New("drag session already active")
	// ErrNoSession is returned when releasing without an active drag.
	ErrNoSession = errors.New("no active drag session")
	// ErrIndexOutOfRange is returned for a milestone index outside the committed list.
	ErrIndexOutOfRange = errors.New("milestone index out of range")
	// ErrUnknownDragType is returned by ParseDragType.
	ErrUnknownDragType = errors.New("unknown drag type")
	// ErrInvalidDrop is reported for a rejected drag.
	ErrInvalidDrop = errors.New("drop violates milestone order or go-live date")
)

// DragType is the kind of edit a drag performs.
type DragType string

const (
	DragMove        DragType = "move"
	DragResizeStart DragType = "resize-start"
	DragResizeEnd   DragType = "resize-end"
)

// DragTypes lists every valid DragType.
var DragTypes = []DragType{DragMove, DragResizeStart, DragResizeEnd}

// ParseDragType converts s into a DragType.
func ParseDragType(s string) (DragType, error) {
	for _, t := range DragTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDragType, s)
}

// Session is one in-progress pointer edit of a single milestone.
type Session struct {
	MilestoneIdx int
	Type         DragType
	// OriginDate is the boundary being dragged at gesture start.
	OriginDate string
	// CurrentDate is the day cell under the pointer; "" until the pointer
	// has been over one.
	CurrentDate string
	// PrevBoundary and NextBoundary are the neighbors' start dates, "" at the ends.
	PrevBoundary string
	NextBoundary string
	Invalid      bool

	// grabOffset is how many days after the milestone start a move was grabbed.
	grabOffset int
}

// State is the editor's interaction state.
type State int

const (
	StateIdle State = iota
	StateDragging
)

// Boundary returns where the dragged boundary sits for the current pointer
// position. For a move that is the new start, CurrentDate less the grab
// offset; for a resize it is CurrentDate itself.
func (s Session) Boundary() string {
	if s.CurrentDate == "" || s.Type != DragMove || s.grabOffset == 0 {
		return s.CurrentDate
	}
	return shiftDays(s.CurrentDate, -s.grabOffset)
}

func (s State) String() string {
	if s == StateDragging {
		return "dragging"
	}
	return "idle"
}

// OutcomeKind is how a drag ended.
type OutcomeKind int

const (
	OutcomeCancelled OutcomeKind = iota
	OutcomeCommitted
	OutcomeRejected
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCommitted:
		return "committed"
	case OutcomeRejected:
		return "rejected"
	default:
		return "cancelled"
	}
}

// Outcome describes a resolved drag.
type Outcome struct {
	Kind OutcomeKind
	// Milestones is the canonical committed list after the drag. On reject or
	// cancel it is the unchanged pre-drag list.
	Milestones []Milestone
	// Changed is the edited milestone with its new dates (committed only).
	Changed Milestone
	// DeniedIdx is the rejected milestone's index, -1 otherwise.
	DeniedIdx int
	// Target is the date the dragged boundary was released on.
	Target string
}

// Err returns ErrInvalidDrop for a rejected outcome and nil otherwise.
func (o Outcome) Err() error {
	if o.Kind == OutcomeRejected {
		return fmt.Errorf("%w: milestone %d", ErrInvalidDrop, o.DeniedIdx)
	}
	return nil
}

// Editor owns a committed milestone list and at most one drag session.
// Committed data only changes on a successful Release; every preview is
// derived fresh from committed data plus the session delta.
//
// An Editor is not safe for concurrent use. It models one pointer.
type Editor struct {
	committed []Milestone
	goLive    string
	session   *Session
	deniedIdx int
}

// NewEditor returns an idle editor over list. goLive is the designated
// go-live date; when empty the Go Live milestone's start is used.
func NewEditor(list []Milestone, goLive string) *Editor {
	return &Editor{
		committed: cloneMilestones(list),
		goLive:    goLive,
		deniedIdx: -1,
	}
}

func cloneMilestones(list []Milestone) []Milestone {
	out := make([]Milestone, len(list))
	copy(out, list)
	return out
}

// State returns StateDragging while a session exists.
func (e *Editor) State() State {
	if e.session != nil {
		return StateDragging
	}
	return StateIdle
}

// Session returns a copy of the active session.
func (e *Editor) Session() (Session, bool) {
	if e.session == nil {
		return Session{}, false
	}
	return *e.session, true
}

// Milestones returns a copy of the committed list.
func (e *Editor) Milestones() []Milestone {
	return cloneMilestones(e.committed)
}

// GoLive returns the designated go-live date.
func (e *Editor) GoLive() string {
	return e.goLive
}

// SetMilestones replaces the committed list, e.g. after a reload from storage.
func (e *Editor) SetMilestones(list []Milestone) error {
	if e.session != nil {
		return ErrSessionActive
	}
	e.committed = cloneMilestones(list)
	return nil
}

// SetGoLive replaces the designated go-live date.
func (e *Editor) SetGoLive(goLive string) {
	e.goLive = goLive
}

// DeniedIdx returns the index of the last rejected milestone, or -1.
func (e *Editor) DeniedIdx() int {
	return e.deniedIdx
}

// ClearDenied ends the rejection cue.
func (e *Editor) ClearDenied() {
	e.deniedIdx = -1
}

// Start opens a session on milestone idx. cellDate is the day under the
// pointer; for a move it fixes the grab point inside the span so the bar
// follows the pointer without jumping. For resizes the dragged edge starts
// at cellDate.
func (e *Editor) Start(idx int, t DragType, cellDate string) error {
	if e.session != nil {
		return ErrSessionActive
	}
	if idx < 0 || idx >= len(e.committed) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, idx)
	}
	if _, err := ParseDragType(string(t)); err != nil {
		return err
	}

	m := e.committed[idx]
	s := &Session{
		MilestoneIdx: idx,
		Type:         t,
	}
	if t == DragResizeEnd {
		s.OriginDate = normalize(m.End())
	} else {
		s.OriginDate = normalize(m.StartDate)
	}
	if idx > 0 {
		s.PrevBoundary = normalize(e.committed[idx-1].StartDate)
	}
	if idx < len(e.committed)-1 {
		s.NextBoundary = normalize(e.committed[idx+1].StartDate)
	}

	if cellDate != "" {
		s.CurrentDate = normalize(cellDate)
		if t == DragMove {
			s.grabOffset = daysBetween(mustParse(s.OriginDate), mustParse(s.CurrentDate))
		}
	}

	e.deniedIdx = -1
	e.session = s
	s.Invalid = e.evaluate()
	return nil
}

// Update moves the pointer over the day cell date and recomputes validity.
// It returns false when there is no session or nothing changed.
func (e *Editor) Update(date string) bool {
	if e.session == nil || date == "" {
		return false
	}
	target := normalize(date)
	if target == e.session.CurrentDate {
		return false
	}
	e.session.CurrentDate = target
	e.session.Invalid = e.evaluate()
	return true
}

// Preview returns the committed list with the dragged milestone's dates
// replaced by the session delta. With no session it is the committed list.
func (e *Editor) Preview() []Milestone {
	out := cloneMilestones(e.committed)
	if e.session == nil || e.session.CurrentDate == "" {
		return out
	}
	out[e.session.MilestoneIdx] = applyDrag(out[e.session.MilestoneIdx], e.session.Type, e.session.Boundary())
	return out
}

// applyDrag returns m edited by t with the dragged boundary at cur.
// Resizes clamp so a span never inverts; moves keep the day count.
func applyDrag(m Milestone, t DragType, cur string) Milestone {
	start := normalize(m.StartDate)
	end := normalize(m.End())

	switch t {
	case DragResizeEnd:
		newEnd := start
		if cur >= start {
			newEnd = cur
		}
		if newEnd != start || m.EndDate != "" {
			m.EndDate = newEnd
		}
	case DragResizeStart:
		newStart := end
		if cur <= end {
			newStart = cur
		}
		if newStart != start && m.EndDate == "" {
			m.EndDate = end
		}
		m.StartDate = newStart
	case DragMove:
		duration := daysBetween(mustParse(start), mustParse(end))
		m.StartDate = cur
		if m.EndDate != "" {
			m.EndDate = shiftDays(cur, duration)
		}
	}
	return m
}

// evaluate re-runs the full rule check over the preview. The drag is invalid
// when the dragged milestone ends up flagged or when the preview flags any
// milestone the committed list did not already flag.
func (e *Editor) evaluate() bool {
	if e.session == nil || e.session.CurrentDate == "" {
		return false
	}
	preview := e.Preview()
	after := CheckConflicts(preview, EffectiveGoLive(e.goLive, preview))
	if after.IsRed(e.session.MilestoneIdx) {
		return true
	}
	before := CheckConflicts(e.committed, EffectiveGoLive(e.goLive, e.committed))
	return after.introducedOver(before)
}

// Conflicts checks the current preview (or committed list when idle).
func (e *Editor) Conflicts() Conflicts {
	preview := e.Preview()
	return CheckConflicts(preview, EffectiveGoLive(e.goLive, preview))
}

// Release resolves the session. A valid drag that changed dates is applied,
// re-sorted and becomes the committed list. An invalid drag is rejected:
// committed data is untouched and DeniedIdx is set for the shake cue.
// A drag without a current date, or one that changed nothing, is cancelled.
func (e *Editor) Release() (Outcome, error) {
	s := e.session
	if s == nil {
		return Outcome{}, ErrNoSession
	}
	e.session = nil

	out := Outcome{
		Kind:       OutcomeCancelled,
		Milestones: cloneMilestones(e.committed),
		DeniedIdx:  -1,
		Target:     s.Boundary(),
	}
	if s.CurrentDate == "" {
		return out, nil
	}

	if s.Invalid {
		e.deniedIdx = s.MilestoneIdx
		out.Kind = OutcomeRejected
		out.DeniedIdx = s.MilestoneIdx
		return out, nil
	}

	original := e.committed[s.MilestoneIdx]
	changed := applyDrag(original, s.Type, s.Boundary())
	if changed == original {
		return out, nil
	}

	next := cloneMilestones(e.committed)
	next[s.MilestoneIdx] = changed
	e.committed = SortMilestones(next)

	out.Kind = OutcomeCommitted
	out.Milestones = cloneMilestones(e.committed)
	out.Changed = changed
	return out, nil
}

// Cancel discards any session without touching committed data.
func (e *Editor) Cancel() {
	e.session = nil
}

// GridInput returns the month grid input for the editor's current state.
func (e *Editor) GridInput(month time.Time) Input {
	in := Input{
		Month:      month,
		Milestones: e.Milestones(),
		GoLive:     e.goLive,
		DeniedIdx:  e.deniedIdx,
	}
	if e.session != nil {
		s := *e.session
		in.Session = &s
		in.Preview = e.Preview()
	}
	return in
}
