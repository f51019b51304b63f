package tui

import (
	"strings"

	"github.com/hyperengineering/slate/internal/pointer"
)

const navW = 5

// navButton is a month navigation button whose hover fill sweeps in from
// the side the pointer entered and drains toward the side it left.
type navButton struct {
	label   string
	tracker *pointer.Tracker
	side    pointer.Side
	fill    int
	hovered bool
}

func newNavButton(glyph string, x int) *navButton {
	return &navButton{
		label:   "  " + glyph + "  ",
		tracker: pointer.NewTracker(pointer.Rect{X: x, Y: 0, W: navW, H: 1}),
	}
}

func (b *navButton) contains(x, y int) bool {
	return b.tracker.Rect.Contains(x, y)
}

// move feeds a pointer position and reports whether hover state changed.
func (b *navButton) move(x, y int) bool {
	tr, ok := b.tracker.Move(x, y)
	if !ok {
		return false
	}
	b.hovered = tr.Kind == pointer.Enter
	b.side = tr.Side
	return true
}

// step advances the fill one frame and reports whether more frames remain.
func (b *navButton) step() bool {
	target := 0
	if b.hovered {
		target = navW
	}
	switch {
	case b.side == pointer.Top || b.side == pointer.Bottom:
		// A one-row button fills vertically in a single frame.
		b.fill = target
	case b.fill < target:
		b.fill++
	case b.fill > target:
		b.fill--
	}
	return b.fill != target
}

func (b *navButton) filled(col int) bool {
	if b.side == pointer.Right {
		return col >= navW-b.fill
	}
	return col < b.fill
}

func (b *navButton) View() string {
	var sb strings.Builder
	for i, r := range []rune(b.label) {
		if b.filled(i) {
			sb.WriteString(NavFill.Render(string(r)))
		} else {
			sb.WriteString(NavButton.Render(string(r)))
		}
	}
	return sb.String()
}
