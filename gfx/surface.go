package gfx

import (
	"image"

	"github.com/lucasb-eyer/go-colorful"
)

// A Texture is a drawable resource owned by an effect.
type Texture interface {
	Size() (w, h int)
	Release()
}

// A Surface is the render target of the main loop. It is only ever used from
// the main loop goroutine.
type Surface interface {
	Size() (w, h int)
	Upload(img image.Image) (Texture, error)
	SetClearColor(c colorful.Color)
	Clear()
	// Draw copies the src part of t scaled into dst with the given opacity.
	Draw(t Texture, src, dst Rect, alpha float64)
	// Present shows the frame. It paces the caller to the frame rate.
	Present()
	Close() error
}

// Bounds returns the full surface rectangle.
func Bounds(s Surface) Rect {
	w, h := s.Size()
	return Rect{0, 0, float64(w), float64(h)}
}
