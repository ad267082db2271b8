package effect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matt-g-everett/marquee/gfx"
	"github.com/matt-g-everett/marquee/media/mediatest"
)

func TestVideoFrameAccurate(t *testing.T) {
	env, s, l := setup()
	l.Videos["v.gif"] = mediatest.Video{FPS: 10, W: 40, H: 20, Frames: 100}

	e, err := NewVideoPlayback(env, []string{"v.gif"}, 0, 0.5, gfx.Stretch, t0)
	require.NoError(t, err)
	dec := l.Decoders[0]

	frame(s, e, t0)
	assert.Equal(t, 1, dec.Decoded, "first frame decoded immediately")

	// Ahead of schedule: reuse the frame.
	frame(s, e, at(40*time.Millisecond))
	assert.Equal(t, 1, dec.Decoded)
	assert.Len(t, s.Uploads, 1)

	// Behind: frames 1..4 are discarded and frame 5 is shown.
	d := frame(s, e, at(500*time.Millisecond))
	assert.Equal(t, 6, dec.Decoded)
	assert.Len(t, s.Uploads, 2)
	assert.True(t, s.Uploads[0].Released)
	assert.Equal(t, gfx.Rect{W: 400, H: 100}, d[0].Dst)

	d = frame(s, e, at(2*time.Second))
	assert.Equal(t, 0.5, d[0].Alpha)
}

func TestVideoLoopsSingleSource(t *testing.T) {
	env, s, l := setup()
	l.Videos["v.gif"] = mediatest.Video{FPS: 10, W: 40, H: 20, Frames: 5}

	e, err := NewVideoPlayback(env, []string{"v.gif"}, 0, 1, gfx.Fit, t0)
	require.NoError(t, err)

	frame(s, e, t0)
	frame(s, e, at(400*time.Millisecond))
	frame(s, e, at(600*time.Millisecond))
	require.Len(t, l.Decoders, 2)
	assert.True(t, l.Decoders[0].Closed)
	assert.Equal(t, "v.gif", l.Decoders[1].Path)
	assert.Equal(t, 0, e.Source())

	// Clock was reset at 600ms, so frame 0 is shown on the next tick.
	frame(s, e, at(600*time.Millisecond))
	assert.Equal(t, 1, l.Decoders[1].Decoded)

	// Looping does not fade in again.
	d := frame(s, e, at(1100*time.Millisecond))
	assert.Equal(t, 1.0, d[0].Alpha)
}

func TestVideoPlaylist(t *testing.T) {
	env, s, l := setup()
	l.Videos["a.gif"] = mediatest.Video{FPS: 10, W: 40, H: 20, Frames: 2}
	l.Videos["b.gif"] = mediatest.Video{FPS: 25, W: 20, H: 20, Frames: 2}

	e, err := NewVideoPlayback(env, []string{"a.gif", "b.gif"}, 10, 1, gfx.Fit, t0)
	require.NoError(t, err)

	frame(s, e, t0)
	frame(s, e, at(time.Second))
	assert.Equal(t, 1, e.Source())

	d := frame(s, e, at(time.Second))
	assert.Equal(t, 0.0, d[0].Alpha, "each source fades in")
	assert.Equal(t, 1, l.Decoders[1].Decoded)

	frame(s, e, at(2*time.Second))
	assert.Equal(t, 0, e.Source(), "playlist wraps around")

	e.Stop(at(2 * time.Second))
	frame(s, e, at(3*time.Second))
	assert.True(t, e.IsStopped())
	e.Cleanup()
	assert.True(t, l.Decoders[len(l.Decoders)-1].Closed)
}

func TestVideoOpenFailure(t *testing.T) {
	env, _, _ := setup()
	_, err := NewVideoPlayback(env, []string{"missing.mp4"}, 0, 1, gfx.Fit, t0)
	assert.Error(t, err)
}
