package stream

import (
	"testing"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matt-g-everett/marquee/effect"
	"github.com/matt-g-everett/marquee/gfx"
	"github.com/matt-g-everett/marquee/gfx/gfxtest"
	"github.com/matt-g-everett/marquee/logutil"
)

type fakeEffect struct {
	name    string
	m       *Manager
	stopped bool
	stops   int
	renders int
	cleaned int
	// liveAtCleanup records whether the manager still held the effect when
	// it was cleaned up.
	liveAtCleanup bool
}

func (f *fakeEffect) Render(s gfx.Surface, now time.Time) { f.renders++ }
func (f *fakeEffect) Stop(now time.Time) { f.stops++ }
func (f *fakeEffect) IsStopped() bool { return f.stopped }
func (f *fakeEffect) Cleanup() {
	f.cleaned++
	for _, e := range f.m.Effects() {
		if e == f {
			f.liveAtCleanup = true
		}
	}
}

func names(es []effect.Effect) []string {
	var out []string
	for _, e := range es {
		out = append(out, e.(*fakeEffect).name)
	}
	return out
}

func TestManagerPrunesOldest(t *testing.T) {
	r := gfxtest.NewRecorder(400, 100)
	m := NewManager(r, 3, logutil.Discard)

	var all []*fakeEffect
	for _, n := range []string{"e0", "e1", "e2", "e3", "e4", "e5"} {
		f := &fakeEffect{name: n, m: m}
		all = append(all, f)
		m.Add(f)
	}
	m.Render(time.Unix(10, 0))

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, []string{"e3", "e4", "e5"}, names(m.Effects()))
	for i, f := range all {
		assert.Equal(t, 1, f.renders, f.name)
		assert.Zero(t, f.stops, "pruning does not run an outro")
		if i < 3 {
			assert.Equal(t, 1, f.cleaned, f.name)
			assert.False(t, f.liveAtCleanup, "cleaned up only after removal")
		} else {
			assert.Zero(t, f.cleaned, f.name)
		}
	}
	assert.Equal(t, 1, r.Frames)
}

func TestManagerRemovesStopped(t *testing.T) {
	r := gfxtest.NewRecorder(400, 100)
	m := NewManager(r, 8, logutil.Discard)

	a := &fakeEffect{name: "a", m: m}
	b := &fakeEffect{name: "b", m: m, stopped: true}
	c := &fakeEffect{name: "c", m: m}
	m.Add(a)
	m.Add(b)
	m.Add(c)
	m.Render(time.Unix(10, 0))

	assert.Equal(t, []string{"a", "c"}, names(m.Effects()))
	assert.Equal(t, 1, b.renders, "rendered in the pass that removes it")
	assert.Equal(t, 1, b.cleaned)
	assert.False(t, b.liveAtCleanup)

	m.StopAll(time.Unix(11, 0))
	assert.Equal(t, 1, a.stops)
	assert.Equal(t, 1, c.stops)
	assert.Zero(t, b.stops)
}

func TestManagerBackground(t *testing.T) {
	r := gfxtest.NewRecorder(400, 100)
	m := NewManager(r, 8, logutil.Discard)
	t0 := time.Unix(100, 0)

	assert.Equal(t, colorful.Color{}, m.Background(t0))

	red := colorful.Color{R: 1}
	m.SetBackground(red, t0)
	assert.Equal(t, colorful.Color{}, m.Background(t0))

	mid := t0.Add(BackgroundFade / 2)
	before := m.Background(mid)
	assert.Greater(t, before.R, 0.0)
	assert.Less(t, before.R, 1.0)

	blue := colorful.Color{B: 1}
	m.SetBackground(blue, mid)
	assert.Equal(t, before, m.Background(mid), "retargeting does not jump")

	m.Render(mid.Add(BackgroundFade))
	assert.Equal(t, blue, m.Background(mid.Add(BackgroundFade)))
	assert.Equal(t, blue, r.ClearColor)
}

func TestManagerShutdown(t *testing.T) {
	r := gfxtest.NewRecorder(400, 100)
	m := NewManager(r, 8, logutil.Discard)
	a := &fakeEffect{name: "a", m: m}
	m.Add(a)

	require.NoError(t, m.Shutdown())
	assert.Equal(t, 1, a.cleaned)
	assert.Zero(t, m.Len())
	assert.True(t, r.Closed)
}
