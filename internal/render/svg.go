// Package render draws month grids built by the schedule package as SVG
// for the customer-facing calendar.
package render

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/hyperengineering/slate/internal/schedule"
)

// Layout in pixels.
const (
	cellW     = 44
	cellH     = 36
	margin    = 16
	titleH    = 32
	headerH   = 20
	legendRow = 20
)

var weekdays = [7]string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

// LegendEntry is one milestone listed under the grid.
type LegendEntry struct {
	Label string
	Range string
	Color schedule.Color
	Red   bool
}

// Legend builds legend entries for a canonical milestone list, colored the
// same way the grid paints it.
func Legend(list []schedule.Milestone, conflicts schedule.Conflicts) []LegendEntry {
	out := make([]LegendEntry, len(list))
	for i, m := range list {
		r := m.StartDate
		if m.EndDate != "" && m.EndDate != m.StartDate {
			r += " to " + m.EndDate
		}
		out[i] = LegendEntry{
			Label: m.Label,
			Range: r,
			Color: schedule.RainbowColor(i, len(list)),
			Red:   conflicts.IsRed(i),
		}
	}
	return out
}

func escape(s string) string {
	var b strings.Builder
	// EscapeText only fails when the writer does.
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func splitID(a, b schedule.Color) string {
	return "split-" + strings.TrimPrefix(a.Hex(), "#") + "-" + strings.TrimPrefix(b.Hex(), "#")
}

// MonthSVG writes m and its legend as a standalone SVG document.
func MonthSVG(w io.Writer, m schedule.Month, legend []LegendEntry) error {
	weeks := m.Weeks()
	width := margin*2 + cellW*7
	gridTop := margin + titleH + headerH
	height := gridTop + cellH*len(weeks) + margin + legendRow*len(legend)

	var svg strings.Builder
	fmt.Fprintf(&svg, `<?xml version="1.0" encoding="UTF-8"?>
<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="#ffffff"/>
<defs>
<style>
.title { font-family: sans-serif; font-size: 16px; font-weight: bold; fill: #111827; }
.dow { font-family: sans-serif; font-size: 11px; fill: #6b7280; }
.day { font-family: sans-serif; font-size: 11px; fill: #111827; }
.label { font-family: sans-serif; font-size: 8px; fill: #111827; }
.legend { font-family: sans-serif; font-size: 11px; fill: #111827; }
</style>
<pattern id="invalid" width="6" height="6" patternUnits="userSpaceOnUse" patternTransform="rotate(45)">
<rect width="6" height="6" fill="%s"/>
<line x1="0" y1="0" x2="0" y2="6" stroke="#ffffff" stroke-width="2"/>
</pattern>
`, width, height, width, height, schedule.InvalidColor.Hex())

	seen := map[string]bool{}
	for _, c := range m.Cells {
		if c.Fill != schedule.FillSplit {
			continue
		}
		id := splitID(c.Color, c.SplitColor)
		if seen[id] {
			continue
		}
		seen[id] = true
		// Diagonal hard stop: left owner top-left, right owner bottom-right.
		fmt.Fprintf(&svg, `<linearGradient id="%s" x1="0" y1="0" x2="1" y2="1">
<stop offset="50%%" stop-color="%s"/>
<stop offset="50%%" stop-color="%s"/>
</linearGradient>
`, id, c.Color.Hex(), c.SplitColor.Hex())
	}
	svg.WriteString("</defs>\n")

	fmt.Fprintf(&svg, `<text class="title" x="%d" y="%d">%s</text>`+"\n", margin, margin+20, escape(m.Title))
	for i, d := range weekdays {
		fmt.Fprintf(&svg, `<text class="dow" x="%d" y="%d" text-anchor="middle">%s</text>`+"\n",
			margin+i*cellW+cellW/2, margin+titleH+14, d)
	}

	for row, week := range weeks {
		for col, c := range week {
			if c.IsPadding() {
				continue
			}
			drawCell(&svg, c, margin+col*cellW, gridTop+row*cellH)
		}
	}

	y := gridTop + cellH*len(weeks) + margin
	for _, e := range legend {
		fill := e.Color.Hex()
		if e.Red {
			fill = schedule.InvalidColor.Hex()
		}
		fmt.Fprintf(&svg, `<rect x="%d" y="%d" width="12" height="12" rx="2" fill="%s"/>`+"\n", margin, y, fill)
		fmt.Fprintf(&svg, `<text class="legend" x="%d" y="%d">%s  %s</text>`+"\n", margin+18, y+10, escape(e.Label), escape(e.Range))
		y += legendRow
	}

	svg.WriteString("</svg>\n")
	_, err := io.WriteString(w, svg.String())
	return err
}

func drawCell(svg *strings.Builder, c schedule.Cell, x, y int) {
	fill := "#f9fafb"
	switch c.Fill {
	case schedule.FillSolid:
		fill = c.Color.Hex()
	case schedule.FillSplit:
		fill = "url(#" + splitID(c.Color, c.SplitColor) + ")"
	case schedule.FillInvalid:
		fill = "url(#invalid)"
	}
	fmt.Fprintf(svg, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s" stroke="#e5e7eb"/>`+"\n",
		x+1, y+1, cellW-2, cellH-2, fill)

	if c.PhaseStart {
		fmt.Fprintf(svg, `<circle cx="%d" cy="%d" r="9" fill="none" stroke="#111827" stroke-width="1.5"/>`+"\n",
			x+12, y+12)
	}
	fmt.Fprintf(svg, `<text class="day" x="%d" y="%d" text-anchor="middle">%d</text>`+"\n", x+12, y+16, c.Day)

	if c.Label != "" {
		fmt.Fprintf(svg, `<text class="label" x="%d" y="%d">%s</text>`+"\n", x+3, y+cellH-5, escape(truncate(c.Label, 9)))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
