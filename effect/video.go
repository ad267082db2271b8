package effect

import (
	"io"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/matt-g-everett/marquee/anim"
	"github.com/matt-g-everett/marquee/gfx"
	"github.com/matt-g-everett/marquee/media"
)

const fallbackFPS = 30

// VideoPlayback plays one video in a loop, or a playlist in order.
//
// Playback is frame accurate: the frame shown is round(elapsed × fps) of the
// current source. Frames are decoded and discarded to catch up, and the last
// frame is reused while playback is ahead of the clock.
type VideoPlayback struct {
	lifecycle
	env    Env
	paths  []string
	index  int
	margin float64
	alpha  float64
	fit    gfx.FitMode

	dec     media.Decoder
	fps     float64
	started time.Time
	decoded int
	frame   gfx.Texture
	fade    anim.Float
}

// NewVideoPlayback opens the first of paths and starts playing at now.
func NewVideoPlayback(env Env, paths []string, margin, alpha float64, fit gfx.FitMode,
	now time.Time) (*VideoPlayback, error) {

	if len(paths) == 0 {
		return nil, errors.New("video: no sources")
	}

	e := new(VideoPlayback)
	e.env = env
	e.paths = paths
	e.margin = margin
	e.alpha = alpha
	e.fit = fit

	dec, err := env.Loader.OpenVideo(paths[0])
	if err != nil {
		return nil, err
	}
	e.load(dec, now, true)
	return e, nil
}

// Source returns the playlist index of the source being played.
func (e *VideoPlayback) Source() int {
	return e.index
}

func (e *VideoPlayback) load(dec media.Decoder, now time.Time, fadeIn bool) {
	e.dec = dec
	e.fps = dec.FPS()
	if e.fps <= 0 {
		e.fps = fallbackFPS
	}
	e.started = now
	e.decoded = 0
	if fadeIn && e.State() == Active {
		e.fade = anim.NewValue(0, e.alpha, FadeInDuration, now, anim.Eased())
	}
}

// Render implements Effect.
func (e *VideoPlayback) Render(s gfx.Surface, now time.Time) {
	if e.dec != nil {
		e.advance(s, now)
	}
	if e.frame != nil {
		alpha, _ := e.fade.Evaluate(now)
		w, h := size(e.frame)
		src, dst := gfx.Place(w, h, gfx.Bounds(s).Inset(e.margin), e.fit)
		s.Draw(e.frame, src, dst, alpha)
	}
	e.settle(now)
}

func (e *VideoPlayback) advance(s gfx.Surface, now time.Time) {
	desired := int(math.Round(now.Sub(e.started).Seconds() * e.fps))
	if e.frame != nil && e.decoded > desired {
		return
	}

	for e.decoded < desired {
		if _, err := e.dec.Next(); err != nil {
			e.endOfStream(now, err)
			return
		}
		e.decoded++
	}

	img, err := e.dec.Next()
	if err != nil {
		e.endOfStream(now, err)
		return
	}
	e.decoded++

	tex, err := s.Upload(img)
	if err != nil {
		e.env.logger().Warnw("video frame upload failed", "source", e.paths[e.index], "error", err)
		return
	}
	if e.frame != nil {
		e.frame.Release()
	}
	e.frame = tex
}

// endOfStream loops a single source or moves on to the next playlist entry.
// Decode errors are treated like the end of the stream.
func (e *VideoPlayback) endOfStream(now time.Time, cause error) {
	logger := e.env.logger()
	if !errors.Is(cause, io.EOF) {
		logger.Warnw("video decode failed", "source", e.paths[e.index], "error", cause)
	}

	e.dec.Close()
	e.dec = nil

	next := (e.index + 1) % len(e.paths)
	dec, err := e.env.Loader.OpenVideo(e.paths[next])
	if err != nil {
		logger.Errorw("video open failed, stopping playback", "source", e.paths[next], "error", err)
		e.Stop(now)
		return
	}
	e.index = next
	e.load(dec, now, len(e.paths) > 1)
}

// Stop implements Effect.
func (e *VideoPlayback) Stop(now time.Time) {
	if !e.begin() {
		return
	}
	e.fade = outro(e.fade, now, 0)
	e.watch(e.fade)
}

// Cleanup implements Effect.
func (e *VideoPlayback) Cleanup() {
	if e.released {
		return
	}
	if e.dec != nil {
		e.dec.Close()
		e.dec = nil
	}
	if e.frame != nil {
		e.frame.Release()
		e.frame = nil
	}
	e.lifecycle.Cleanup()
}
