// Package effect implements the visual behaviours shown on the marquee.
//
// Every effect goes through the same lifecycle: it is Active from creation,
// Stopping once Stop has been called and its outro animations are running,
// and Stopped once those animations have finished. Stop re-derives each live
// animation from the value it currently shows, so stopping never pops.
package effect

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/matt-g-everett/marquee/anim"
	"github.com/matt-g-everett/marquee/gfx"
	"github.com/matt-g-everett/marquee/media"
)

// Fixed timings shared by the effects.
const (
	OutroDuration  = time.Second
	FadeInDuration = time.Second
	ShowFadeIn     = 1500 * time.Millisecond
)

// An Effect is a time-driven visual behaviour owned by the render manager.
type Effect interface {
	// Render draws the effect as it looks at now.
	Render(s gfx.Surface, now time.Time)
	// Stop starts the outro. Calling it again has no effect.
	Stop(now time.Time)
	// IsStopped reports whether the outro has completed.
	IsStopped() bool
	// Cleanup releases drawable resources. It must only be called once the
	// effect is no longer rendered.
	Cleanup()
}

// State of an effect's lifecycle.
type State int

// Lifecycle states.
const (
	Active State = iota
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// Env carries the collaborators effects are constructed with.
type Env struct {
	Surface   gfx.Surface
	Loader    media.Loader
	AntiAlias float64
	Logger    *zap.SugaredLogger
}

func (env Env) logger() *zap.SugaredLogger {
	if env.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return env.Logger
}

func (env Env) texture(path string, w, h float64) (gfx.Texture, error) {
	img, err := env.Loader.LoadImage(path, int(math.Ceil(w)), int(math.Ceil(h)), env.AntiAlias)
	if err != nil {
		return nil, err
	}
	tex, err := env.Surface.Upload(img)
	if err != nil {
		return nil, errors.Wrapf(err, "upload %s", path)
	}
	return tex, nil
}

// lifecycle is embedded by every effect.
type lifecycle struct {
	state    State
	outro    []anim.Float
	textures []gfx.Texture
	released bool
}

// State returns the current lifecycle state.
func (l *lifecycle) State() State {
	return l.state
}

// IsStopped implements Effect.
func (l *lifecycle) IsStopped() bool {
	return l.state == Stopped
}

// Cleanup implements Effect.
func (l *lifecycle) Cleanup() {
	if l.released {
		return
	}
	l.released = true
	for _, t := range l.textures {
		t.Release()
	}
	l.textures = nil
}

func (l *lifecycle) own(t gfx.Texture) gfx.Texture {
	l.textures = append(l.textures, t)
	return t
}

// begin moves an active effect to Stopping. It reports false if the effect
// was already stopping.
func (l *lifecycle) begin() bool {
	if l.state != Active {
		return false
	}
	l.state = Stopping
	return true
}

// watch registers outro animations that gate the transition to Stopped.
func (l *lifecycle) watch(a ...anim.Float) {
	l.outro = append(l.outro, a...)
}

// settle completes the outro once every watched animation is done.
func (l *lifecycle) settle(now time.Time) {
	if l.state != Stopping {
		return
	}
	for _, a := range l.outro {
		if _, done := a.Evaluate(now); !done {
			return
		}
	}
	l.state = Stopped
}

// outro re-derives a from its current value towards end.
func outro(a anim.Float, now time.Time, end float64) *anim.Value {
	v, _ := a.Evaluate(now)
	return anim.NewValue(v, end, OutroDuration, now, anim.Eased())
}

func size(t gfx.Texture) (float64, float64) {
	w, h := t.Size()
	return float64(w), float64(h)
}

func drawContained(s gfx.Surface, t gfx.Texture, area gfx.Rect, alpha float64) {
	w, h := size(t)
	s.Draw(t, gfx.Rect{W: w, H: h}, area.Contain(w, h), alpha)
}
