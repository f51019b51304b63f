package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/hyperengineering/slate/internal/schedule"
	"github.com/hyperengineering/slate/internal/types"
)

var weekdays = [7]string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

// View implements tea.Model.
func (m *Model) View() string {
	grid := m.grid()

	var b strings.Builder
	b.WriteString(m.headerView(grid.Title))
	b.WriteString("\n")
	b.WriteString(weekdayRow())
	b.WriteString(weeksView(grid, m.shake%2 == 1))
	b.WriteString("\n")
	b.WriteString(m.statusView())
	b.WriteString("\n\n")
	b.WriteString(legendView(m.editor.Preview(), m.editor.Conflicts()))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return App.Render(b.String())
}

func (m *Model) headerView(title string) string {
	label := m.project.Name + " · " + title
	mid := gridW - 2*navW
	return m.prev.View() +
		lipgloss.PlaceHorizontal(mid, lipgloss.Center, Title.Render(truncate(label, mid))) +
		m.next.View()
}

// Calendar renders a read-only month of list, as shown to a customer.
func Calendar(project types.Project, list []schedule.Milestone, month time.Time) string {
	in := schedule.ReadOnly(month, list, project.GoLiveDate)
	in.PhaseForDay = schedule.PhaseLookup(list)
	grid := schedule.BuildMonth(in)
	for i := range grid.Cells {
		grid.Cells[i].Handles = schedule.Handles{}
	}

	var b strings.Builder
	b.WriteString(lipgloss.PlaceHorizontal(gridW, lipgloss.Center, Title.Render(project.Name+" · "+grid.Title)))
	b.WriteString("\n")
	b.WriteString(weekdayRow())
	b.WriteString(weeksView(grid, false))
	b.WriteString("\n")
	b.WriteString(legendView(list, schedule.CheckConflicts(list, schedule.EffectiveGoLive(project.GoLiveDate, list))))
	return b.String()
}

func weekdayRow() string {
	var b strings.Builder
	for _, d := range weekdays {
		b.WriteString(Weekday.Render(d))
	}
	return b.String() + "\n"
}

// weeksView renders every week of grid as two terminal rows per week. odd
// selects the alternate frame of the shake animation.
func weeksView(grid schedule.Month, odd bool) string {
	var b strings.Builder
	for _, week := range grid.Weeks() {
		var top, bottom strings.Builder
		for _, c := range week {
			t, btm := cellView(c, odd)
			top.WriteString(t)
			bottom.WriteString(btm)
		}
		b.WriteString(top.String() + "\n" + bottom.String() + "\n")
	}
	return b.String()
}

// cellView renders the two terminal rows of one day cell.
func cellView(c schedule.Cell, odd bool) (string, string) {
	if c.IsPadding() {
		blank := strings.Repeat(" ", cellW)
		return blank, blank
	}

	day := fmt.Sprintf("%2d", c.Day)
	if c.Shake && odd {
		day = fmt.Sprintf("%-2d", c.Day)
	}
	left, right := " ", " "
	if c.Handles.ResizeStart {
		left = "‹"
	}
	if c.Handles.ResizeEnd {
		right = "›"
	}
	top := left + " " + day + " " + right
	bottom := " " + truncate(c.Label, cellW-1)

	base := lipgloss.NewStyle().Width(cellW)
	if c.PhaseStart {
		base = base.Underline(true)
	}

	switch c.Fill {
	case schedule.FillSolid:
		s := base.Background(bg(c.Color)).Foreground(textOn(c.Color))
		return s.Render(top), s.Underline(false).Render(bottom)
	case schedule.FillSplit:
		half := cellW / 2
		l := lipgloss.NewStyle().Width(half).Background(bg(c.Color)).Foreground(textOn(c.Color))
		r := lipgloss.NewStyle().Width(cellW - half).Background(bg(c.SplitColor)).Foreground(textOn(c.SplitColor))
		rt := []rune(top)
		rb := []rune(padRight(bottom, cellW))
		return l.Render(string(rt[:half])) + r.Render(string(rt[half:])),
			l.Render(string(rb[:half])) + r.Render(string(rb[half:]))
	case schedule.FillInvalid:
		s := base.Background(bg(schedule.InvalidColor)).Foreground(White)
		return s.Render(top), s.Underline(false).Render(strings.Repeat("╱", cellW))
	default:
		s := base.Foreground(Muted)
		return s.Render(top), lipgloss.NewStyle().Width(cellW).Render("")
	}
}

func (m *Model) statusView() string {
	if m.err != nil {
		return StatusError.Render(m.err.Error())
	}
	if s, ok := m.editor.Session(); ok {
		cur := s.Boundary()
		if cur == "" {
			cur = s.OriginDate
		}
		line := fmt.Sprintf("%s → %s", s.Type, cur)
		if s.Invalid {
			return StatusError.Render(line + "  (invalid)")
		}
		return Status.Render(line)
	}
	return Status.Render(m.status)
}

func legendView(list []schedule.Milestone, conflicts schedule.Conflicts) string {
	var b strings.Builder
	for i, ms := range list {
		c := schedule.RainbowColor(i, len(list))
		swatch := lipgloss.NewStyle().Foreground(bg(c)).Render("██")
		line := fmt.Sprintf("%s %s  %s", swatch, ms.Label, spanText(ms))
		if conflicts.IsRed(i) {
			line += LegendRed.Render("  ✗")
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func padRight(s string, n int) string {
	if k := len([]rune(s)); k < n {
		return s + strings.Repeat(" ", n-k)
	}
	return string([]rune(s)[:n])
}
