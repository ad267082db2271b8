// Package stream runs the marquee: the manager that owns live effects and
// the loop that feeds it commands and paces rendering.
package stream

import (
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/matt-g-everett/marquee/anim"
	"github.com/matt-g-everett/marquee/effect"
	"github.com/matt-g-everett/marquee/gfx"
)

// BackgroundFade is how long the background takes to reach a new colour.
const BackgroundFade = time.Second

// Manager owns the live effects and the background colour. It is used only
// from the render loop's goroutine.
type Manager struct {
	surface    gfx.Surface
	log        *zap.SugaredLogger
	maxEffects int
	effects    []effect.Effect
	background *anim.Color
}

// NewManager creates a Manager drawing to s that keeps at most maxEffects
// effects alive.
func NewManager(s gfx.Surface, maxEffects int, log *zap.SugaredLogger) *Manager {
	m := new(Manager)
	m.surface = s
	m.log = log
	m.maxEffects = maxEffects
	black := colorful.Color{}
	m.background = anim.NewColor(black, black, 0, time.Time{})
	return m
}

// Add appends e. It is rendered above every effect added before it.
func (m *Manager) Add(e effect.Effect) {
	m.effects = append(m.effects, e)
}

// Len is the number of live effects.
func (m *Manager) Len() int {
	return len(m.effects)
}

// Effects returns the live effects, oldest first.
func (m *Manager) Effects() []effect.Effect {
	return append([]effect.Effect(nil), m.effects...)
}

// StopAll starts the outro of every live effect.
func (m *Manager) StopAll(now time.Time) {
	for _, e := range m.effects {
		e.Stop(now)
	}
}

// Background returns the background colour at now.
func (m *Manager) Background(now time.Time) colorful.Color {
	c, _ := m.background.Evaluate(now)
	return c
}

// SetBackground fades the background from its current colour to c.
func (m *Manager) SetBackground(c colorful.Color, now time.Time) {
	m.background = anim.NewColor(m.Background(now), c, BackgroundFade, now, anim.Eased())
}

// Render draws one frame at now and presents it. Stopped effects are then
// dropped, as are the oldest effects beyond the limit, and their resources
// released.
func (m *Manager) Render(now time.Time) {
	m.surface.SetClearColor(m.Background(now))
	m.surface.Clear()
	for _, e := range m.effects {
		e.Render(m.surface, now)
	}

	live, removed := lo.FilterReject(m.effects, func(e effect.Effect, _ int) bool {
		return !e.IsStopped()
	})
	if excess := len(live) - m.maxEffects; m.maxEffects > 0 && excess > 0 {
		removed = append(removed, live[:excess]...)
		live = live[excess:]
		m.log.Debugw("pruned oldest effects", "count", excess)
	}
	m.effects = live
	for _, e := range removed {
		e.Cleanup()
	}

	m.surface.Present()
}

// Shutdown releases every live effect and closes the surface.
func (m *Manager) Shutdown() error {
	for _, e := range m.effects {
		e.Cleanup()
	}
	m.effects = nil
	return errors.Wrap(m.surface.Close(), "close surface")
}
