// Package gfx holds the drawing collaborators the renderer depends on: a
// surface that can upload and draw textures, the geometry used to place them
// and display selection.
package gfx

import (
	"math"

	"github.com/pkg/errors"
)

// Rect is a rectangle in surface coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Inset shrinks r by margin on every side. It never returns negative sizes.
func (r Rect) Inset(margin float64) Rect {
	out := Rect{r.X + margin, r.Y + margin, r.W - 2*margin, r.H - 2*margin}
	if out.W < 0 {
		out.X, out.W = r.X+r.W/2, 0
	}
	if out.H < 0 {
		out.Y, out.H = r.Y+r.H/2, 0
	}
	return out
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Contain scales a w×h source to fit entirely inside r, centered.
func (r Rect) Contain(w, h float64) Rect {
	if w <= 0 || h <= 0 {
		return Rect{r.X + r.W/2, r.Y + r.H/2, 0, 0}
	}
	s := math.Min(r.W/w, r.H/h)
	return r.centered(w*s, h*s)
}

func (r Rect) centered(w, h float64) Rect {
	return Rect{r.X + (r.W-w)/2, r.Y + (r.H-h)/2, w, h}
}

// FitMode selects how a source is placed into a destination rectangle.
type FitMode string

const (
	// Fill covers the destination, cropping the source.
	Fill FitMode = "fill"
	// Fit shows the whole source, letterboxed.
	Fit FitMode = "fit"
	// Stretch ignores the aspect ratio.
	Stretch FitMode = "stretch"
	// Center draws the source at its native size.
	Center FitMode = "center"
)

// ErrFitMode is returned for unknown fit modes.
var ErrFitMode = errors.New("unknown fit mode")

// ParseFitMode validates a fit mode name.
func ParseFitMode(s string) (FitMode, error) {
	switch m := FitMode(s); m {
	case Fill, Fit, Stretch, Center:
		return m, nil
	case "":
		return Fit, nil
	}
	return "", errors.Wrap(ErrFitMode, s)
}

// Place computes the source and destination rectangles to draw a w×h source
// into dst using mode.
func Place(w, h float64, dst Rect, mode FitMode) (src, out Rect) {
	src = Rect{0, 0, w, h}
	switch mode {
	case Stretch:
		return src, dst
	case Center:
		out = dst.centered(w, h)
		return clip(src, out, dst)
	case Fill:
		if w <= 0 || h <= 0 {
			return src, Rect{}
		}
		s := math.Max(dst.W/w, dst.H/h)
		cw, ch := dst.W/s, dst.H/s
		return Rect{(w - cw) / 2, (h - ch) / 2, cw, ch}, dst
	default:
		return src, dst.Contain(w, h)
	}
}

// clip trims out to bounds and the matching part of src. Scale is 1:1 with
// out, which is how Center places sources.
func clip(src, out, bounds Rect) (Rect, Rect) {
	x0 := math.Max(out.X, bounds.X)
	y0 := math.Max(out.Y, bounds.Y)
	x1 := math.Min(out.X+out.W, bounds.X+bounds.W)
	y1 := math.Min(out.Y+out.H, bounds.Y+bounds.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}, Rect{}
	}
	return Rect{src.X + x0 - out.X, src.Y + y0 - out.Y, x1 - x0, y1 - y0},
		Rect{x0, y0, x1 - x0, y1 - y0}
}
