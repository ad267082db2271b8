package gfx

import (
	"image"
	"image/color"
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// ErrReleased is returned when uploading to a closed canvas.
var ErrReleased = errors.New("canvas is closed")

// An Image is a Texture backed by an in-memory image.
type Image struct {
	img image.Image
}

// Size returns the pixel size of the image, or zero once released.
func (t *Image) Size() (int, int) {
	if t.img == nil {
		return 0, 0
	}
	b := t.img.Bounds()
	return b.Dx(), b.Dy()
}

// Release drops the pixel data.
func (t *Image) Release() {
	t.img = nil
}

// Canvas is a software Surface. Frames are composed in memory and Present
// waits for the next frame tick, which is what paces the main loop.
type Canvas struct {
	dc     *gg.Context
	clear  colorful.Color
	ticker *clock.Ticker
	frames uint64
	closed bool
}

// NewCanvas creates a w×h canvas presenting at fps frames per second. A
// non-positive fps disables pacing.
func NewCanvas(w, h int, fps float64, clk clock.Clock) *Canvas {
	c := new(Canvas)
	c.dc = gg.NewContext(w, h)
	if fps > 0 {
		c.ticker = clk.Ticker(time.Duration(float64(time.Second) / fps))
	}
	return c
}

// Size returns the canvas size in pixels.
func (c *Canvas) Size() (int, int) {
	return c.dc.Width(), c.dc.Height()
}

// Frame returns the composed frame. It is overwritten by the next Clear.
func (c *Canvas) Frame() *image.RGBA {
	return c.dc.Image().(*image.RGBA)
}

// Frames returns the number of presented frames.
func (c *Canvas) Frames() uint64 {
	return c.frames
}

// Upload wraps img as a texture.
func (c *Canvas) Upload(img image.Image) (Texture, error) {
	if c.closed {
		return nil, ErrReleased
	}
	if img == nil {
		return nil, errors.New("nil image")
	}
	return &Image{img: img}, nil
}

// SetClearColor sets the colour used by Clear.
func (c *Canvas) SetClearColor(col colorful.Color) {
	c.clear = col.Clamped()
}

// Clear fills the frame with the clear colour.
func (c *Canvas) Clear() {
	c.dc.SetColor(c.clear)
	c.dc.Clear()
}

// Draw blends the src part of t into dst.
func (c *Canvas) Draw(t Texture, src, dst Rect, alpha float64) {
	tex, ok := t.(*Image)
	if !ok || tex.img == nil || src.Empty() || dst.Empty() || alpha <= 0 {
		return
	}

	origin := tex.img.Bounds().Min
	sr := image.Rect(
		origin.X+int(math.Floor(src.X)), origin.Y+int(math.Floor(src.Y)),
		origin.X+int(math.Ceil(src.X+src.W)), origin.Y+int(math.Ceil(src.Y+src.H)),
	).Intersect(tex.img.Bounds())
	if sr.Empty() {
		return
	}

	sx, sy := dst.W/src.W, dst.H/src.H
	m := f64.Aff3{
		sx, 0, dst.X - (float64(origin.X)+src.X)*sx,
		0, sy, dst.Y - (float64(origin.Y)+src.Y)*sy,
	}

	opts := &draw.Options{}
	if alpha < 1 {
		opts.SrcMask = image.NewUniform(color.Alpha{A: uint8(alpha*255 + 0.5)})
	}
	draw.ApproxBiLinear.Transform(c.Frame(), m, tex.img, sr, draw.Over, opts)
}

// Present blocks until the next frame tick.
func (c *Canvas) Present() {
	if c.ticker != nil {
		<-c.ticker.C
	}
	c.frames++
}

// Close stops frame pacing. The canvas cannot upload afterwards.
func (c *Canvas) Close() error {
	if c.ticker != nil {
		c.ticker.Stop()
	}
	c.closed = true
	return nil
}
