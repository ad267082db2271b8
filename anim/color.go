package anim

import (
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

// Color animates the three RGB channels independently with shared timing.
type Color struct {
	r, g, b *Value
}

// NewColor creates a Color animation from begin to end.
func NewColor(begin, end colorful.Color, duration time.Duration, start time.Time, opts ...Option) *Color {
	c := new(Color)
	c.r = NewValue(begin.R, end.R, duration, start, opts...)
	c.g = NewValue(begin.G, end.G, duration, start, opts...)
	c.b = NewValue(begin.B, end.B, duration, start, opts...)
	return c
}

// Restart re-anchors all channels at t.
func (c *Color) Restart(t time.Time) {
	c.r.Restart(t)
	c.g.Restart(t)
	c.b.Restart(t)
}

// Evaluate returns the colour at t; done only once every channel is done.
func (c *Color) Evaluate(t time.Time) (colorful.Color, bool) {
	r, rDone := c.r.Evaluate(t)
	g, gDone := c.g.Evaluate(t)
	b, bDone := c.b.Evaluate(t)
	return colorful.Color{R: r, G: g, B: b}, rDone && gDone && bDone
}
