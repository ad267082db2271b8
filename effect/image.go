package effect

import (
	"time"

	"github.com/pkg/errors"

	"github.com/matt-g-everett/marquee/anim"
	"github.com/matt-g-everett/marquee/gfx"
)

// ShowImage fits an image into the display and fades it in.
type ShowImage struct {
	lifecycle
	tex    gfx.Texture
	margin float64
	fade   anim.Float
}

// NewShowImage loads path and starts fading it in at now.
func NewShowImage(env Env, path string, margin float64, now time.Time) (*ShowImage, error) {
	area := gfx.Bounds(env.Surface).Inset(margin)
	tex, err := env.texture(path, area.W, area.H)
	if err != nil {
		return nil, err
	}

	e := new(ShowImage)
	e.tex = e.own(tex)
	e.margin = margin
	e.fade = anim.NewValue(0, 1, ShowFadeIn, now, anim.Eased())
	return e, nil
}

// Render implements Effect.
func (e *ShowImage) Render(s gfx.Surface, now time.Time) {
	alpha, _ := e.fade.Evaluate(now)
	drawContained(s, e.tex, gfx.Bounds(s).Inset(e.margin), alpha)
	e.settle(now)
}

// Stop implements Effect.
func (e *ShowImage) Stop(now time.Time) {
	if !e.begin() {
		return
	}
	e.fade = outro(e.fade, now, 0)
	e.watch(e.fade)
}

// FadeMode selects how GrowImage changes opacity.
type FadeMode string

// Fade modes.
const (
	FadeNone FadeMode = "none"
	FadeIn   FadeMode = "in"
	FadeOut  FadeMode = "out"
)

// ErrFadeMode is returned for unknown fade modes.
var ErrFadeMode = errors.New("unknown fade mode")

// ParseFadeMode validates a fade mode name.
func ParseFadeMode(s string) (FadeMode, error) {
	switch m := FadeMode(s); m {
	case FadeNone, FadeIn, FadeOut:
		return m, nil
	case "":
		return FadeNone, nil
	}
	return "", errors.Wrap(ErrFadeMode, s)
}

// GrowImage animates the margin around an image, so a shrinking margin
// grows the image.
type GrowImage struct {
	lifecycle
	tex    gfx.Texture
	margin anim.Float
	fade   anim.Float
}

// NewGrowImage loads path and animates the margin from startMargin to
// endMargin over duration.
func NewGrowImage(env Env, path string, startMargin, endMargin float64, duration time.Duration,
	fade FadeMode, now time.Time) (*GrowImage, error) {

	bounds := gfx.Bounds(env.Surface)
	largest := bounds.Inset(min(startMargin, endMargin))
	tex, err := env.texture(path, largest.W, largest.H)
	if err != nil {
		return nil, err
	}

	e := new(GrowImage)
	e.tex = e.own(tex)
	e.margin = anim.NewValue(startMargin, endMargin, duration, now, anim.Eased())
	switch fade {
	case FadeIn:
		e.fade = anim.NewValue(0, 1, duration, now, anim.Eased())
	case FadeOut:
		e.fade = anim.NewValue(1, 0, duration, now, anim.Eased())
	default:
		e.fade = anim.Const(1, now)
	}
	return e, nil
}

// Render implements Effect.
func (e *GrowImage) Render(s gfx.Surface, now time.Time) {
	margin, _ := e.margin.Evaluate(now)
	alpha, _ := e.fade.Evaluate(now)
	drawContained(s, e.tex, gfx.Bounds(s).Inset(margin), alpha)
	e.settle(now)
}

// Stop implements Effect.
func (e *GrowImage) Stop(now time.Time) {
	if !e.begin() {
		return
	}
	m, _ := e.margin.Evaluate(now)
	e.margin = anim.Const(m, now)
	e.fade = outro(e.fade, now, 0)
	e.watch(e.fade)
}

// FlyDuration is how long a Flyout takes to slide in.
const FlyDuration = time.Second

// Flyout slides an image in from the right edge of the display.
type Flyout struct {
	lifecycle
	tex   gfx.Texture
	rest  gfx.Rect
	away  float64
	slide anim.Float
	fade  anim.Float
}

// NewFlyout loads path at height×display height and slides it in after
// delay, fading to alpha.
func NewFlyout(env Env, path string, alpha, height, margin float64, delay time.Duration,
	now time.Time) (*Flyout, error) {

	if height <= 0 || height > 1 {
		return nil, errors.Errorf("flyout height %v out of range (0, 1]", height)
	}
	bounds := gfx.Bounds(env.Surface)
	lane := gfx.Rect{W: bounds.W - 2*margin, H: bounds.H * height}
	tex, err := env.texture(path, lane.W, lane.H)
	if err != nil {
		return nil, err
	}

	e := new(Flyout)
	e.tex = e.own(tex)
	fit := lane.Contain(size(tex))
	e.rest = gfx.Rect{
		X: bounds.X + bounds.W - margin - fit.W,
		Y: bounds.Y + (bounds.H-fit.H)/2,
		W: fit.W,
		H: fit.H,
	}
	e.away = fit.W + margin
	e.slide = anim.NewValue(e.away, 0, FlyDuration, now, anim.Eased(), anim.WithDelay(delay))
	e.fade = anim.NewValue(0, alpha, FlyDuration, now, anim.Eased(), anim.WithDelay(delay))
	return e, nil
}

// Render implements Effect.
func (e *Flyout) Render(s gfx.Surface, now time.Time) {
	offset, _ := e.slide.Evaluate(now)
	alpha, _ := e.fade.Evaluate(now)
	w, h := size(e.tex)
	dst := e.rest
	dst.X += offset
	s.Draw(e.tex, gfx.Rect{W: w, H: h}, dst, alpha)
	e.settle(now)
}

// Stop implements Effect.
func (e *Flyout) Stop(now time.Time) {
	if !e.begin() {
		return
	}
	e.slide = outro(e.slide, now, e.away)
	e.fade = outro(e.fade, now, 0)
	e.watch(e.slide, e.fade)
}

// Pulse timings.
const (
	PulsePeak   = 1.06
	PulseGrow   = 500 * time.Millisecond
	PulseShrink = 500 * time.Millisecond
	PulseLinger = time.Second
)

// PulseImage fades an image in once and then pulses its scale until stopped.
type PulseImage struct {
	lifecycle
	tex   gfx.Texture
	fade  anim.Float
	scale anim.Float
}

// NewPulseImage loads path and starts pulsing at now.
func NewPulseImage(env Env, path string, now time.Time) (*PulseImage, error) {
	bounds := gfx.Bounds(env.Surface)
	tex, err := env.texture(path, bounds.W, bounds.H)
	if err != nil {
		return nil, err
	}

	e := new(PulseImage)
	e.tex = e.own(tex)
	e.fade = anim.NewValue(0, 1, FadeInDuration, now, anim.Eased())
	e.scale = anim.NewSequence(now, true,
		anim.NewValue(1, PulsePeak, PulseGrow, now, anim.Eased()),
		anim.NewValue(PulsePeak, 1, PulseShrink, now, anim.Eased(), anim.WithLinger(PulseLinger)),
	)
	return e, nil
}

// Render implements Effect. The image is fitted so that it fills the display
// at the peak of the pulse.
func (e *PulseImage) Render(s gfx.Surface, now time.Time) {
	alpha, _ := e.fade.Evaluate(now)
	scale, _ := e.scale.Evaluate(now)
	w, h := size(e.tex)
	bounds := gfx.Bounds(s)
	fit := bounds.Contain(w, h)
	k := scale / PulsePeak
	dst := gfx.Rect{
		X: fit.X + fit.W*(1-k)/2,
		Y: fit.Y + fit.H*(1-k)/2,
		W: fit.W * k,
		H: fit.H * k,
	}
	s.Draw(e.tex, gfx.Rect{W: w, H: h}, dst, alpha)
	e.settle(now)
}

// Stop implements Effect.
func (e *PulseImage) Stop(now time.Time) {
	if !e.begin() {
		return
	}
	e.fade = outro(e.fade, now, 0)
	e.scale = outro(e.scale, now, 1)
	e.watch(e.fade, e.scale)
}
