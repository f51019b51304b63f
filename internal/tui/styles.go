package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/hyperengineering/slate/internal/schedule"
)

var (
	Primary = lipgloss.Color("#7C3AED") // Purple
	Muted   = lipgloss.Color("#6B7280") // Gray
	Error   = lipgloss.Color("#EF4444") // Red
	Empty   = lipgloss.Color("#1F2937")
	White   = lipgloss.Color("#FFFFFF")
	Black   = lipgloss.Color("#000000")
)

var (
	App         = lipgloss.NewStyle().Padding(1, 2)
	Title       = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	Weekday     = lipgloss.NewStyle().Foreground(Muted).Width(cellW).Align(lipgloss.Center)
	NavButton   = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	NavFill     = lipgloss.NewStyle().Background(Primary).Foreground(White).Bold(true)
	Status      = lipgloss.NewStyle().Foreground(Muted).Italic(true)
	StatusError = lipgloss.NewStyle().Foreground(Error).Bold(true)
	LegendRed   = lipgloss.NewStyle().Foreground(Error)
)

// bg converts a milestone color into a terminal color.
func bg(c schedule.Color) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}

// textOn picks black or white text for legibility on c.
func textOn(c schedule.Color) lipgloss.Color {
	l, _, _ := colorful.Hsl(c.H, c.S/100, c.L/100).Lab()
	if l > 0.6 {
		return Black
	}
	return White
}
