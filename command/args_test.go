package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeArgs(t *testing.T) {
	a, err := DecodeArgs(GrowImage("a.png", 10, 2, 1500*time.Millisecond, "out"), GrowImageArgs{})
	require.NoError(t, err)
	assert.Equal(t, GrowImageArgs{Image: "a.png", StartMargin: 10, EndMargin: 2, Duration: 1.5, Fade: "out"}, a)
	assert.Equal(t, 1500*time.Millisecond, a.DurationValue())

	s, err := DecodeArgs(HorizontalScroll([]string{"a", "b"}, 180, true, 80, 110), ScrollArgs{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, s.Images)
	assert.True(t, s.Reverse)

	bg, err := DecodeArgs(SetBackground(1, 0.5, 0), SetBackgroundArgs{})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0.5, 0}, bg.Color)

	st, err := DecodeArgs(SetState("k", 3.0), StateArgs{})
	require.NoError(t, err)
	assert.Equal(t, 3.0, st.Value)
}

func TestDecodeArgsDefaultsAndWeakTypes(t *testing.T) {
	c := Command{Op: OpVerticalScroll, Args: map[string]any{"images": []any{"x.png"}, "speed": "42"}}
	a, err := DecodeArgs(c, ScrollArgs{Speed: 100, Spacing: 5})
	require.NoError(t, err)
	assert.Equal(t, 42.0, a.Speed)
	assert.Equal(t, 5.0, a.Spacing)

	f, err := DecodeArgs(Command{Op: OpFlyout, Args: map[string]any{"image": "f.svg"}},
		FlyoutArgs{Alpha: 1, Height: 0.5})
	require.NoError(t, err)
	assert.Equal(t, FlyoutArgs{Image: "f.svg", Alpha: 1, Height: 0.5}, f)
	assert.Zero(t, f.DelayValue())
}

func TestDecodeArgsValidation(t *testing.T) {
	for name, decode := range map[string]func() error{
		"show-image": func() error {
			_, err := DecodeArgs(Command{Op: OpShowImage}, ShowImageArgs{})
			return err
		},
		"pulse-image": func() error {
			_, err := DecodeArgs(PulseImage(""), PulseImageArgs{})
			return err
		},
		"scroll": func() error {
			_, err := DecodeArgs(HorizontalScroll(nil, 1, false, 0, 0), ScrollArgs{})
			return err
		},
		"play-videos": func() error {
			_, err := DecodeArgs(PlayVideos(nil, 0, 1, "fit"), PlayVideosArgs{})
			return err
		},
		"set-background": func() error {
			_, err := DecodeArgs(SetBackground(2, 0, 0), SetBackgroundArgs{})
			return err
		},
		"set-background without color": func() error {
			_, err := DecodeArgs(Command{Op: OpSetBackground}, SetBackgroundArgs{})
			return err
		},
		"set-background short color": func() error {
			_, err := DecodeArgs(Command{Op: OpSetBackground, Args: map[string]any{"color": []any{0.5}}}, SetBackgroundArgs{})
			return err
		},
		"get-state": func() error {
			_, err := DecodeArgs(GetState(""), StateArgs{})
			return err
		},
	} {
		assert.ErrorIs(t, decode(), ErrArgument, name)
	}

	_, err := DecodeArgs(Command{Op: OpShowImage, Args: map[string]any{"image": "a", "margin": "wide"}}, ShowImageArgs{})
	assert.Error(t, err)
}
