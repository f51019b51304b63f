// Package pointer detects which side of a rectangle a pointer entered or left
// through, so hover effects can fill in from the direction of travel.
package pointer

import "math"

// Side is an edge of a rectangle.
type Side int

const (
	Top Side = iota
	Right
	Bottom
	Left
)

func (s Side) String() string {
	switch s {
	case Top:
		return "top"
	case Right:
		return "right"
	case Bottom:
		return "bottom"
	default:
		return "left"
	}
}

// Rect is an axis-aligned rectangle in pointer coordinates. X grows rightward
// and Y downward.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the point lies inside r. The right and bottom
// edges are exclusive.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// NearestSide returns the side of r closest to the point, judged relative to
// r's center and normalized by r's aspect ratio so wide rectangles do not
// favour the left and right edges.
func (r Rect) NearestSide(x, y int) Side {
	if r.W <= 0 || r.H <= 0 {
		return Left
	}
	cx := float64(r.X) + float64(r.W)/2
	cy := float64(r.Y) + float64(r.H)/2
	dx := (float64(x) - cx) / (float64(r.W) / 2)
	dy := (float64(y) - cy) / (float64(r.H) / 2)

	if math.Abs(dx) >= math.Abs(dy) {
		if dx < 0 {
			return Left
		}
		return Right
	}
	if dy < 0 {
		return Top
	}
	return Bottom
}

// Kind distinguishes entering from leaving.
type Kind int

const (
	Enter Kind = iota
	Leave
)

func (k Kind) String() string {
	if k == Leave {
		return "leave"
	}
	return "enter"
}

// Transition is a pointer crossing the boundary of a tracked rectangle.
type Transition struct {
	Kind Kind
	Side Side
}

// Tracker turns a stream of pointer positions into enter and leave
// transitions for one rectangle.
type Tracker struct {
	Rect Rect

	inside bool
	lastX  int
	lastY  int
	seen   bool
}

// NewTracker returns a tracker for r with the pointer assumed outside.
func NewTracker(r Rect) *Tracker {
	return &Tracker{Rect: r}
}

// Inside reports whether the last observed position was inside the rectangle.
func (t *Tracker) Inside() bool {
	return t.inside
}

// Move records a pointer position. It returns a transition when the pointer
// crossed the rectangle's boundary. An entry side is taken from the last
// outside position when there is one, since a fast pointer may land deep
// inside the rectangle; a leave side is taken from the new outside position.
func (t *Tracker) Move(x, y int) (Transition, bool) {
	in := t.Rect.Contains(x, y)
	defer func() {
		t.inside = in
		t.lastX, t.lastY, t.seen = x, y, true
	}()

	switch {
	case in && !t.inside:
		side := t.Rect.NearestSide(x, y)
		if t.seen {
			side = t.Rect.NearestSide(t.lastX, t.lastY)
		}
		return Transition{Kind: Enter, Side: side}, true
	case !in && t.inside:
		return Transition{Kind: Leave, Side: t.Rect.NearestSide(x, y)}, true
	}
	return Transition{}, false
}

// Reset forgets the pointer, e.g. when the terminal loses focus.
func (t *Tracker) Reset() {
	t.inside = false
	t.seen = false
}
