// Package tui is the interactive terminal editor: a month grid whose
// milestone bars are moved and resized with the mouse.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hyperengineering/slate/internal/metrics"
	"github.com/hyperengineering/slate/internal/schedule"
	"github.com/hyperengineering/slate/internal/types"
)

// Grid geometry in terminal cells.
const (
	cellW   = 6
	cellH   = 2
	gridTop = 2
	gridW   = cellW * 7
)

const (
	shakeFrames   = 6
	shakeInterval = 60 * time.Millisecond
	hoverInterval = 25 * time.Millisecond
	saveTimeout   = 5 * time.Second
)

// Writer persists a committed drag.
type Writer interface {
	UpdateMilestoneDates(ctx context.Context, projectID string, m schedule.Milestone) error
}

type shakeTickMsg struct{}

type hoverTickMsg struct{}

type savedMsg struct {
	changed schedule.Milestone
	// before is the committed list prior to the drag, restored on failure.
	before []schedule.Milestone
	err    error
}

// Model is the bubbletea model of the editor.
type Model struct {
	project types.Project
	editor  *schedule.Editor
	store   Writer
	month   time.Time
	now     func() time.Time

	keys     KeyMap
	help     help.Model
	showHelp bool

	prev     *navButton
	next     *navButton
	hovering bool

	shake  int
	status string
	err    error
}

// New returns an editor over project's canonical milestone list, opened on
// month. A zero month opens on the first milestone's month, or today.
func New(project types.Project, list []schedule.Milestone, w Writer, month time.Time) *Model {
	if month.IsZero() && len(list) > 0 {
		if t, err := schedule.ParseLocal(list[0].StartDate); err == nil {
			month = t
		}
	}
	if month.IsZero() {
		month = time.Now()
	}
	return &Model{
		project: project,
		editor:  schedule.NewEditor(list, project.GoLiveDate),
		store:   w,
		month:   schedule.FirstOfMonth(month),
		now:     time.Now,
		keys:    Keys,
		help:    help.New(),
		prev:    newNavButton("◀", 0),
		next:    newNavButton("▶", gridW-navW),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Month returns the first day of the displayed month.
func (m *Model) Month() time.Time {
	return m.month
}

// Milestones returns the committed list.
func (m *Model) Milestones() []schedule.Milestone {
	return m.editor.Milestones()
}

// grid builds the current month as the editor sees it.
func (m *Model) grid() schedule.Month {
	in := m.editor.GridInput(m.month)
	view := in.Milestones
	if in.Preview != nil {
		view = in.Preview
	}
	in.PhaseForDay = schedule.PhaseLookup(view)
	return schedule.BuildMonth(in)
}

// cellAt maps a terminal position to a day cell and the horizontal fraction
// of the cell that was hit.
func (m *Model) cellAt(x, y int) (schedule.Cell, float64, bool) {
	if x < 0 || x >= gridW || y < gridTop {
		return schedule.Cell{}, 0, false
	}
	row, col := (y-gridTop)/cellH, x/cellW
	c, ok := m.grid().CellAt(row, col)
	if !ok || c.IsPadding() {
		return schedule.Cell{}, 0, false
	}
	frac := (float64(x-col*cellW) + 0.5) / cellW
	return c, frac, true
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case shakeTickMsg:
		m.shake--
		if m.shake <= 0 {
			m.shake = 0
			m.editor.ClearDenied()
			return m, nil
		}
		return m, shakeTick()

	case hoverTickMsg:
		a, b := m.prev.step(), m.next.step()
		m.hovering = a || b
		if m.hovering {
			return m, hoverTick()
		}
		return m, nil

	case savedMsg:
		if msg.err != nil {
			// The store never saw the change; put the editor back. A drag
			// begun on the unsaved list is dropped with it.
			if m.editor.State() == schedule.StateDragging {
				m.editor.Cancel()
				metrics.RecordDragOutcome(schedule.OutcomeCancelled.String(), metrics.SurfaceTUI)
			}
			m.err = fmt.Errorf("save %s: %w", msg.changed.Label, msg.err)
			if err := m.editor.SetMilestones(msg.before); err != nil {
				m.err = errors.Join(m.err, fmt.Errorf("restore: %w", err))
			}
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("saved %s %s", msg.changed.Label, spanText(msg.changed))
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Cancel):
		if m.editor.State() == schedule.StateDragging {
			m.editor.Cancel()
			metrics.RecordDragOutcome(schedule.OutcomeCancelled.String(), metrics.SurfaceTUI)
			m.status = "drag cancelled"
		}
	case key.Matches(msg, m.keys.Prev):
		m.month = schedule.AddMonths(m.month, -1)
	case key.Matches(msg, m.keys.Next):
		m.month = schedule.AddMonths(m.month, 1)
	case key.Matches(msg, m.keys.Today):
		m.month = schedule.FirstOfMonth(m.now())
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	a, b := m.prev.move(msg.X, msg.Y), m.next.move(msg.X, msg.Y)
	if a || b {
		if !m.hovering {
			m.hovering = true
			cmds = append(cmds, hoverTick())
		}
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			break
		}
		switch {
		case m.prev.contains(msg.X, msg.Y):
			m.month = schedule.AddMonths(m.month, -1)
		case m.next.contains(msg.X, msg.Y):
			m.month = schedule.AddMonths(m.month, 1)
		default:
			m.press(msg.X, msg.Y)
		}

	case tea.MouseActionMotion:
		if m.editor.State() == schedule.StateDragging {
			if c, _, ok := m.cellAt(msg.X, msg.Y); ok {
				m.editor.Update(c.Date)
			}
		}

	case tea.MouseActionRelease:
		if m.editor.State() == schedule.StateDragging {
			if c, _, ok := m.cellAt(msg.X, msg.Y); ok {
				m.editor.Update(c.Date)
			}
			cmds = append(cmds, m.release())
		}
	}
	return m, tea.Batch(cmds...)
}

// press opens a drag on the milestone under the pointer.
func (m *Model) press(x, y int) {
	if m.editor.State() != schedule.StateIdle {
		return
	}
	c, frac, ok := m.cellAt(x, y)
	if !ok || c.Committed == nil {
		return
	}
	t, ok := schedule.HandleAt(c, frac)
	if !ok {
		return
	}
	if err := m.editor.Start(c.Committed.Idx, t, c.Date); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.status = fmt.Sprintf("%s %s", t, m.editor.Milestones()[c.Committed.Idx].Label)
}

// release resolves the drag and returns the command that persists it.
func (m *Model) release() tea.Cmd {
	before := m.editor.Milestones()
	out, err := m.editor.Release()
	if err != nil {
		m.err = err
		return nil
	}
	metrics.RecordDragOutcome(out.Kind.String(), metrics.SurfaceTUI)

	switch out.Kind {
	case schedule.OutcomeRejected:
		running := m.shake > 0
		m.shake = shakeFrames
		m.status = ""
		m.err = fmt.Errorf("%s cannot move there: %w", before[out.DeniedIdx].Label, schedule.ErrInvalidDrop)
		if running {
			// The running tick chain picks up the reset count.
			return nil
		}
		return shakeTick()
	case schedule.OutcomeCommitted:
		m.status = "saving…"
		return m.save(before, out.Changed)
	default:
		m.status = ""
		return nil
	}
}

func (m *Model) save(before []schedule.Milestone, changed schedule.Milestone) tea.Cmd {
	projectID := m.project.ID
	w := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		err := w.UpdateMilestoneDates(ctx, projectID, changed)
		if err == nil {
			metrics.RecordMilestoneWrite("update_dates", 1)
		}
		return savedMsg{changed: changed, before: before, err: err}
	}
}

func shakeTick() tea.Cmd {
	return tea.Tick(shakeInterval, func(time.Time) tea.Msg { return shakeTickMsg{} })
}

func hoverTick() tea.Cmd {
	return tea.Tick(hoverInterval, func(time.Time) tea.Msg { return hoverTickMsg{} })
}

func spanText(ms schedule.Milestone) string {
	if ms.EndDate == "" || ms.EndDate == ms.StartDate {
		return ms.StartDate
	}
	return ms.StartDate + " → " + ms.EndDate
}
