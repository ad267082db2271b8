package media

import (
	"image"
	"image/draw"
	"image/gif"
	"io"
	"os"
)

// A Decoder produces the frames of one video source in order.
type Decoder interface {
	FPS() float64
	Size() (w, h int)
	// Next decodes the next frame. It returns io.EOF at the end of the
	// stream. The caller owns the returned image.
	Next() (image.Image, error)
	Close() error
}

const defaultGIFFPS = 10

type gifDecoder struct {
	g      *gif.GIF
	canvas *image.RGBA
	saved  *image.RGBA // canvas before a DisposalPrevious frame
	next   int
	fps    float64
}

// OpenGIF decodes an animated GIF into a frame Decoder.
func OpenGIF(path string) (Decoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeGIF(f)
}

// DecodeGIF reads an animated GIF from r.
func DecodeGIF(r io.Reader) (Decoder, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, err
	}

	d := &gifDecoder{g: g, fps: defaultGIFFPS}
	d.canvas = image.NewRGBA(image.Rect(0, 0, g.Config.Width, g.Config.Height))

	// Delays are in 100ths of a second.
	total := 0
	for _, delay := range g.Delay {
		total += delay
	}
	if total > 0 && len(g.Delay) > 0 {
		d.fps = 100 * float64(len(g.Delay)) / float64(total)
	}
	return d, nil
}

func (d *gifDecoder) FPS() float64 { return d.fps }

func (d *gifDecoder) Size() (int, int) {
	return d.g.Config.Width, d.g.Config.Height
}

func (d *gifDecoder) Next() (image.Image, error) {
	if d.next >= len(d.g.Image) {
		return nil, io.EOF
	}
	if d.next > 0 {
		switch d.disposal(d.next - 1) {
		case gif.DisposalBackground:
			prev := d.g.Image[d.next-1]
			draw.Draw(d.canvas, prev.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			if d.saved != nil {
				copy(d.canvas.Pix, d.saved.Pix)
			}
		}
	}
	if d.disposal(d.next) == gif.DisposalPrevious {
		d.saved = clone(d.canvas)
	}

	frame := d.g.Image[d.next]
	draw.Draw(d.canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
	d.next++
	return clone(d.canvas), nil
}

func (d *gifDecoder) disposal(i int) byte {
	if i < len(d.g.Disposal) {
		return d.g.Disposal[i]
	}
	return gif.DisposalNone
}

func clone(src *image.RGBA) *image.RGBA {
	out := image.NewRGBA(src.Rect)
	copy(out.Pix, src.Pix)
	return out
}

func (d *gifDecoder) Close() error {
	d.g = &gif.GIF{}
	return nil
}
