package gfx

import (
	"github.com/pkg/errors"
)

// Reserved display indices.
const (
	// DisplayAuto picks the display with the smallest height.
	DisplayAuto = -1
	// DisplayDebug carves a narrow strip from the primary display.
	DisplayDebug = -2
)

// ErrNoDisplay is returned when no display matches the requested index.
var ErrNoDisplay = errors.New("no such display")

// SelectDisplay returns the bounds the marquee window should occupy.
func SelectDisplay(displays []Rect, index int) (Rect, error) {
	if len(displays) == 0 {
		return Rect{}, errors.Wrap(ErrNoDisplay, "no displays")
	}

	switch {
	case index == DisplayAuto:
		best := displays[0]
		for _, d := range displays[1:] {
			if d.H < best.H {
				best = d
			}
		}
		return best, nil
	case index == DisplayDebug:
		p := displays[0]
		return Rect{p.X, p.Y, p.W, float64(int(p.H / 8))}, nil
	case index >= 0 && index < len(displays):
		return displays[index], nil
	}

	return Rect{}, errors.Wrapf(ErrNoDisplay, "index %d of %d", index, len(displays))
}
