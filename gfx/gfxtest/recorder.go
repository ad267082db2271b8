// Package gfxtest provides a Surface that records draw calls.
package gfxtest

import (
	"image"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matt-g-everett/marquee/gfx"
)

// Texture is a Texture that remembers whether it was released.
type Texture struct {
	W, H     int
	Name     string
	Released bool
}

// Size implements gfx.Texture.
func (t *Texture) Size() (int, int) { return t.W, t.H }

// Release implements gfx.Texture.
func (t *Texture) Release() { t.Released = true }

// Draw is one recorded draw call.
type Draw struct {
	Texture  *Texture
	Src, Dst gfx.Rect
	Alpha    float64
}

// Recorder is a gfx.Surface that keeps the draw calls of the current frame.
type Recorder struct {
	W, H       int
	ClearColor colorful.Color
	Draws      []Draw
	Frames     int
	Uploads    []*Texture
	Closed     bool
}

// NewRecorder creates a w×h Recorder.
func NewRecorder(w, h int) *Recorder {
	return &Recorder{W: w, H: h}
}

// Size implements gfx.Surface.
func (r *Recorder) Size() (int, int) { return r.W, r.H }

// Upload implements gfx.Surface.
func (r *Recorder) Upload(img image.Image) (gfx.Texture, error) {
	b := img.Bounds()
	t := &Texture{W: b.Dx(), H: b.Dy()}
	if n, ok := img.(interface{ Name() string }); ok {
		t.Name = n.Name()
	}
	r.Uploads = append(r.Uploads, t)
	return t, nil
}

// SetClearColor implements gfx.Surface.
func (r *Recorder) SetClearColor(c colorful.Color) { r.ClearColor = c }

// Clear implements gfx.Surface and starts a new frame.
func (r *Recorder) Clear() { r.Draws = r.Draws[:0] }

// Draw implements gfx.Surface.
func (r *Recorder) Draw(t gfx.Texture, src, dst gfx.Rect, alpha float64) {
	tex, _ := t.(*Texture)
	r.Draws = append(r.Draws, Draw{tex, src, dst, alpha})
}

// Present implements gfx.Surface.
func (r *Recorder) Present() { r.Frames++ }

// Close implements gfx.Surface.
func (r *Recorder) Close() error {
	r.Closed = true
	return nil
}
