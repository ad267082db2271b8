// Package anim contains time-parameterised value generators. An animation is
// a pure function of its parameters and the evaluation time; only Restart
// moves its anchor.
package anim

import (
	"time"

	"github.com/fogleman/ease"
)

// Float is implemented by animations that produce a single number.
type Float interface {
	Evaluate(t time.Time) (float64, bool)
}

// Ease remaps a normalised progress ratio with a quartic ease-out.
func Ease(r float64) float64 {
	return ease.OutQuart(r)
}

// A Value interpolates between Begin and End.
type Value struct {
	Begin      float64
	End        float64
	Duration   time.Duration
	StartDelay time.Duration
	Linger     time.Duration
	Ease       bool
	Repeat     bool

	start time.Time
}

// Option configures a Value.
type Option func(*Value)

// WithDelay holds Begin for d before interpolation starts.
func WithDelay(d time.Duration) Option {
	return func(a *Value) { a.StartDelay = d }
}

// WithLinger holds End for d after interpolation finishes.
func WithLinger(d time.Duration) Option {
	return func(a *Value) { a.Linger = d }
}

// Eased applies Ease to the progress ratio.
func Eased() Option {
	return func(a *Value) { a.Ease = true }
}

// Repeating wraps evaluation time around the total duration.
func Repeating() Option {
	return func(a *Value) { a.Repeat = true }
}

// NewValue creates a Value anchored at start.
func NewValue(begin, end float64, duration time.Duration, start time.Time, opts ...Option) *Value {
	a := new(Value)
	a.Begin = begin
	a.End = end
	a.Duration = duration
	a.start = start
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Const creates a Value that is End from the start and already done.
func Const(v float64, start time.Time) *Value {
	return NewValue(v, v, 0, start)
}

// StartTime returns the current anchor.
func (a *Value) StartTime() time.Time {
	return a.start
}

// TotalDuration is delay + duration + linger.
func (a *Value) TotalDuration() time.Duration {
	return a.StartDelay + a.Duration + a.Linger
}

// Restart re-anchors the animation at t.
func (a *Value) Restart(t time.Time) {
	a.start = t
}

// Evaluate returns the value at t and whether the animation has completed.
// A repeating animation never completes.
func (a *Value) Evaluate(t time.Time) (float64, bool) {
	dt := t.Sub(a.start)
	if dt < 0 {
		return a.Begin, false
	}

	total := a.TotalDuration()
	if a.Repeat && total > 0 && dt > total {
		dt %= total
	}

	if dt < a.StartDelay {
		return a.Begin, false
	}

	if dt < a.StartDelay+a.Duration {
		r := float64(dt-a.StartDelay) / float64(a.Duration)
		if a.Ease {
			r = Ease(r)
		}
		return a.Begin + (a.End-a.Begin)*r, false
	}

	return a.End, !a.Repeat && dt >= total
}
