// Package mediatest provides an in-memory media.Loader.
package mediatest

import (
	"image"
	"io"

	"github.com/pkg/errors"

	"github.com/matt-g-everett/marquee/media"
)

// ErrNotFound is returned for paths the Loader does not know.
var ErrNotFound = errors.New("not found")

// Named is an image that carries the path it was loaded from.
type Named struct {
	*image.RGBA
	Path string
}

// Name returns the source path.
func (n Named) Name() string { return n.Path }

// Video describes a fake video source.
type Video struct {
	FPS    float64
	W, H   int
	Frames int
}

// Loader serves images and videos from maps keyed by path.
type Loader struct {
	Images map[string]image.Point
	Videos map[string]Video
	// Decoders lists every decoder opened, in order.
	Decoders []*Decoder
}

// NewLoader creates an empty Loader.
func NewLoader() *Loader {
	return &Loader{Images: map[string]image.Point{}, Videos: map[string]Video{}}
}

// LoadImage implements media.Loader. Images are returned at their
// registered size regardless of the target.
func (l *Loader) LoadImage(path string, w, h int, antiAlias float64) (image.Image, error) {
	sz, ok := l.Images[path]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, path)
	}
	return Named{image.NewRGBA(image.Rect(0, 0, sz.X, sz.Y)), path}, nil
}

// Exists implements media.Loader.
func (l *Loader) Exists(path string) bool {
	_, img := l.Images[path]
	_, vid := l.Videos[path]
	return img || vid
}

// OpenVideo implements media.Loader.
func (l *Loader) OpenVideo(path string) (media.Decoder, error) {
	v, ok := l.Videos[path]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, path)
	}
	d := &Decoder{Path: path, video: v}
	l.Decoders = append(l.Decoders, d)
	return d, nil
}

// Decoder is a fake media.Decoder that counts decoded frames.
type Decoder struct {
	Path    string
	Decoded int
	Closed  bool
	video   Video
}

// FPS implements media.Decoder.
func (d *Decoder) FPS() float64 { return d.video.FPS }

// Size implements media.Decoder.
func (d *Decoder) Size() (int, int) { return d.video.W, d.video.H }

// Next implements media.Decoder.
func (d *Decoder) Next() (image.Image, error) {
	if d.Decoded >= d.video.Frames {
		return nil, io.EOF
	}
	d.Decoded++
	return Named{image.NewRGBA(image.Rect(0, 0, d.video.W, d.video.H)), d.Path}, nil
}

// Close implements media.Decoder.
func (d *Decoder) Close() error {
	d.Closed = true
	return nil
}
