// Package media loads the images and video sources referenced by commands.
package media

import (
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	// Extra raster formats for imaging.Open.
	_ "golang.org/x/image/webp"
)

// ErrNoDecoder is returned when no video decoder handles a file extension.
var ErrNoDecoder = errors.New("no decoder for file type")

// A Loader turns media paths into pixels.
type Loader interface {
	// LoadImage loads path so that it fits within w×h scaled by antiAlias.
	LoadImage(path string, w, h int, antiAlias float64) (image.Image, error)
	OpenVideo(path string) (Decoder, error)
	// Exists reports whether path can be loaded at all.
	Exists(path string) bool
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// OpenFunc opens a video file.
type OpenFunc func(path string) (Decoder, error)

// FileLoader loads media from the local filesystem.
type FileLoader struct {
	decoders map[string]OpenFunc
}

// NewFileLoader creates a loader with the built-in GIF decoder registered.
func NewFileLoader() *FileLoader {
	l := new(FileLoader)
	l.decoders = make(map[string]OpenFunc)
	l.Register(".gif", OpenGIF)
	return l
}

// Register installs a video decoder for a file extension such as ".mp4".
func (l *FileLoader) Register(ext string, open OpenFunc) {
	l.decoders[strings.ToLower(ext)] = open
}

// Exists implements Loader.
func (l *FileLoader) Exists(path string) bool {
	return Exists(path)
}

// LoadImage implements Loader.
func (l *FileLoader) LoadImage(path string, w, h int, antiAlias float64) (image.Image, error) {
	if w <= 0 || h <= 0 {
		return nil, errors.Errorf("load %s: bad target size %dx%d", path, w, h)
	}
	if antiAlias < 1 {
		antiAlias = 1
	}
	tw := int(math.Ceil(float64(w) * antiAlias))
	th := int(math.Ceil(float64(h) * antiAlias))

	if strings.EqualFold(filepath.Ext(path), ".svg") {
		return loadSVG(path, tw, th)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	b := img.Bounds()
	if b.Dx() > tw || b.Dy() > th {
		img = imaging.Fit(img, tw, th, imaging.Lanczos)
	}
	return img, nil
}

func loadSVG(path string, w, h int) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	defer f.Close()

	icon, err := oksvg.ReadIconStream(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}

	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		vw, vh = float64(w), float64(h)
	}
	s := math.Min(float64(w)/vw, float64(h)/vh)
	pw := int(math.Max(1, math.Round(vw*s)))
	ph := int(math.Max(1, math.Round(vh*s)))

	icon.SetTarget(0, 0, float64(pw), float64(ph))
	img := image.NewRGBA(image.Rect(0, 0, pw, ph))
	scanner := rasterx.NewScannerGV(pw, ph, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(pw, ph, scanner), 1)
	return img, nil
}

// OpenVideo implements Loader.
func (l *FileLoader) OpenVideo(path string) (Decoder, error) {
	open, ok := l.decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, errors.Wrap(ErrNoDecoder, path)
	}
	d, err := open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return d, nil
}
