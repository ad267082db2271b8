package effect

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/matt-g-everett/marquee/anim"
	"github.com/matt-g-everett/marquee/gfx"
)

// Axis is the direction a Scroll moves along.
type Axis int

// Scroll axes.
const (
	Horizontal Axis = iota
	Vertical
)

// Default scroll parameters for commands that leave them out.
const (
	DefaultScrollSpeed   = 100.0
	DefaultScrollSpacing = 0.0
)

type tile struct {
	tex    gfx.Texture
	offset float64
	length float64
}

// Scroll lays images end to end on a virtual strip and scrolls the strip
// across the display, wrapping around so the viewport is always covered.
type Scroll struct {
	lifecycle
	axis   Axis
	margin float64
	tiles  []tile
	strip  float64
	pos    anim.Float
	fade   anim.Float
}

// NewScroll loads paths and starts scrolling at speed pixels per second.
// Margin is applied across the scroll axis; spacing separates images.
func NewScroll(env Env, axis Axis, paths []string, speed float64, reverse bool,
	margin, spacing float64, now time.Time) (*Scroll, error) {

	if len(paths) == 0 {
		return nil, errors.New("scroll: no images")
	}
	if speed <= 0 {
		return nil, errors.Errorf("scroll: speed %v must be positive", speed)
	}

	e := new(Scroll)
	e.axis = axis
	e.margin = margin

	lane := e.lane(gfx.Bounds(env.Surface))
	_, across := e.split(lane.W, lane.H)
	if across <= 0 {
		e.Cleanup()
		return nil, errors.Errorf("scroll: margin %v leaves no room", margin)
	}

	for _, p := range paths {
		tex, err := env.texture(p, lane.W, lane.H)
		if err != nil {
			e.Cleanup()
			return nil, err
		}
		e.own(tex)

		w, h := size(tex)
		along, cross := e.split(w, h)
		if cross <= 0 {
			continue
		}
		length := along * across / cross
		e.tiles = append(e.tiles, tile{tex: tex, offset: e.strip, length: length})
		e.strip += length + spacing
	}
	if e.strip <= 0 {
		e.Cleanup()
		return nil, errors.New("scroll: empty strip")
	}

	period := time.Duration(e.strip / speed * float64(time.Second))
	if reverse {
		e.pos = anim.NewValue(e.strip, 0, period, now, anim.Repeating())
	} else {
		e.pos = anim.NewValue(0, e.strip, period, now, anim.Repeating())
	}
	e.fade = anim.NewValue(0, 1, FadeInDuration, now, anim.Eased())
	return e, nil
}

// split returns the (along, across) components of a size.
func (e *Scroll) split(w, h float64) (float64, float64) {
	if e.axis == Vertical {
		return h, w
	}
	return w, h
}

func (e *Scroll) lane(b gfx.Rect) gfx.Rect {
	if e.axis == Vertical {
		return gfx.Rect{X: b.X + e.margin, Y: b.Y, W: b.W - 2*e.margin, H: b.H}
	}
	return gfx.Rect{X: b.X, Y: b.Y + e.margin, W: b.W, H: b.H - 2*e.margin}
}

// rect builds a rectangle from strip coordinates.
func (e *Scroll) rect(lane gfx.Rect, along, length float64) gfx.Rect {
	if e.axis == Vertical {
		return gfx.Rect{X: lane.X, Y: along, W: lane.W, H: length}
	}
	return gfx.Rect{X: along, Y: lane.Y, W: length, H: lane.H}
}

// Render implements Effect.
func (e *Scroll) Render(s gfx.Surface, now time.Time) {
	p, _ := e.pos.Evaluate(now)
	alpha, _ := e.fade.Evaluate(now)

	lane := e.lane(gfx.Bounds(s))
	start, extent := lane.X, lane.W
	if e.axis == Vertical {
		start, extent = lane.Y, lane.H
	}

	shift := math.Mod(p, e.strip)
	if shift < 0 {
		shift += e.strip
	}
	for base := start - shift; base < start+extent; base += e.strip {
		for _, t := range e.tiles {
			at := base + t.offset
			if at+t.length <= start || at >= start+extent {
				continue
			}
			w, h := size(t.tex)
			s.Draw(t.tex, gfx.Rect{W: w, H: h}, e.rect(lane, at, t.length), alpha)
		}
	}
	e.settle(now)
}

// Stop implements Effect. The strip keeps moving while it fades out.
func (e *Scroll) Stop(now time.Time) {
	if !e.begin() {
		return
	}
	e.fade = outro(e.fade, now, 0)
	e.watch(e.fade)
}
