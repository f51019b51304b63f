package schedule

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an HSL color. H is in degrees, S and L in percent.
type Color struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

// String renders the color as a CSS hsl() value.
func (c Color) String() string {
	return fmt.Sprintf("hsl(%d, %d%%, %d%%)", int(math.Round(c.H)), int(math.Round(c.S)), int(math.Round(c.L)))
}

// Hex renders the color as #rrggbb.
func (c Color) Hex() string {
	return colorful.Hsl(c.H, c.S/100, c.L/100).Hex()
}

// IsZero reports whether c is the zero Color.
func (c Color) IsZero() bool {
	return c == Color{}
}

const (
	rainbowMaxHue     = 280
	rainbowSaturation = 85
	rainbowLightness  = 65
)

var (
	// ReferenceColor is returned for a single-milestone sequence.
	ReferenceColor = Color{H: 0, S: 100, L: 50}

	// InvalidColor is the reserved error hue for conflicting or rejected milestones.
	// Rainbow hues stop at 280 degrees so no milestone color wraps back to it.
	InvalidColor = Color{H: 0, S: 84, L: 60}
)

// RainbowColor assigns a hue to the milestone at index within a sequence of
// total milestones. Every surface that paints milestones must call this with
// the same canonical slice so the editor and the customer view agree.
func RainbowColor(index, total int) Color {
	if total <= 1 {
		return ReferenceColor
	}
	hue := float64(index) / float64(total-1) * rainbowMaxHue
	return Color{H: hue, S: rainbowSaturation, L: rainbowLightness}
}
