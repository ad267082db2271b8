package stream

import (
	"os"
	"os/signal"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/matt-g-everett/marquee/command"
	"github.com/matt-g-everett/marquee/effect"
	"github.com/matt-g-everett/marquee/gfx"
	"github.com/matt-g-everett/marquee/ipc"
)

// Events is polled once per tick for a request to quit.
type Events interface {
	Quit() bool
}

// SignalEvents turns operating system signals into quit requests.
type SignalEvents struct {
	ch chan os.Signal
}

// NewSignalEvents starts watching sig.
func NewSignalEvents(sig ...os.Signal) *SignalEvents {
	e := new(SignalEvents)
	e.ch = make(chan os.Signal, 1)
	signal.Notify(e.ch, sig...)
	return e
}

// Quit implements Events.
func (e *SignalEvents) Quit() bool {
	select {
	case <-e.ch:
		return true
	default:
		return false
	}
}

// Stop stops watching for signals.
func (e *SignalEvents) Stop() {
	signal.Stop(e.ch)
}

// Streamer is the render loop. Each tick it takes at most one command from
// the queue, applies it and renders a frame.
type Streamer struct {
	// Events, when set, is polled every tick. A quit request is sent back
	// to the listener as close through Send, so both loops end together.
	Events Events
	Send   func(command.Command) bool

	manager  *Manager
	queue    *ipc.Queue
	env      effect.Env
	clock    clock.Clock
	log      *zap.SugaredLogger
	quitting bool
}

// NewStreamer creates a Streamer building effects from env.
func NewStreamer(m *Manager, q *ipc.Queue, env effect.Env, clk clock.Clock, log *zap.SugaredLogger) *Streamer {
	s := new(Streamer)
	s.manager = m
	s.queue = q
	s.env = env
	s.clock = clk
	s.log = log
	return s
}

// Run ticks until a close command is processed, then releases every effect
// and the surface.
func (s *Streamer) Run() error {
	s.log.Infow("render loop started")
	for s.Step() {
	}
	s.log.Infow("render loop stopping", "effects", s.manager.Len())
	return s.manager.Shutdown()
}

// Step runs one tick. It returns false once close has been processed.
func (s *Streamer) Step() bool {
	if s.Events != nil && s.Events.Quit() && !s.quitting {
		s.quitting = true
		go s.requestClose()
	}

	now := s.clock.Now()
	if c, ok := s.queue.TryPop(); ok {
		if s.process(c, now) {
			return false
		}
	}
	s.manager.Render(now)
	return true
}

func (s *Streamer) requestClose() {
	if s.Send != nil && s.Send(command.Close()) {
		return
	}
	s.log.Warnw("could not reach listener, closing render loop directly")
	if !s.queue.Push(command.Close()) {
		s.log.Errorw("queue full, close dropped")
	}
}

// process applies c and reports whether it was, or contained, close.
// Failures are logged and never escape.
func (s *Streamer) process(c command.Command, now time.Time) (closing bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("command panicked", "op", c.Op, "panic", r)
		}
	}()

	switch c.Op {
	case command.OpNoop:
	case command.OpClose:
		return true
	case command.OpClear:
		s.manager.StopAll(now)
	case command.OpCommandList:
		for _, sub := range c.Commands {
			if s.process(sub, now) {
				return true
			}
		}
	case command.OpSetBackground:
		a, err := command.DecodeArgs(c, command.SetBackgroundArgs{})
		if err != nil {
			s.log.Errorw("command rejected", "op", c.Op, "error", err)
			break
		}
		s.manager.SetBackground(colorful.Color{R: a.Color[0], G: a.Color[1], B: a.Color[2]}, now)
	case command.OpSetState, command.OpGetState:
		s.log.Warnw("state command reached the render loop, ignored", "op", c.Op)
	default:
		e, err := s.build(c, now)
		if err != nil {
			s.log.Errorw("command failed", "op", c.Op, "error", err)
		} else if e != nil {
			s.manager.Add(e)
			s.log.Debugw("effect added", "op", c.Op, "effects", s.manager.Len())
		}
	}
	return false
}

func added[T effect.Effect](e T, err error) (effect.Effect, error) {
	if err != nil {
		return nil, err
	}
	return e, nil
}

// available drops the paths that do not exist.
func (s *Streamer) available(op command.Opcode, paths ...string) []string {
	found, missing := lo.FilterReject(paths, func(p string, _ int) bool {
		return s.env.Loader.Exists(p)
	})
	if len(missing) > 0 {
		s.log.Debugw("skipping missing media", "op", op, "paths", missing)
	}
	return found
}

// build constructs the effect for c. A nil effect with a nil error means
// the command referenced no existing media.
func (s *Streamer) build(c command.Command, now time.Time) (effect.Effect, error) {
	switch c.Op {
	case command.OpShowImage:
		a, err := command.DecodeArgs(c, command.ShowImageArgs{})
		if err != nil || len(s.available(c.Op, a.Image)) == 0 {
			return nil, err
		}
		return added(effect.NewShowImage(s.env, a.Image, a.Margin, now))

	case command.OpGrowImage:
		a, err := command.DecodeArgs(c, command.GrowImageArgs{Duration: 1})
		if err != nil || len(s.available(c.Op, a.Image)) == 0 {
			return nil, err
		}
		fade, err := effect.ParseFadeMode(a.Fade)
		if err != nil {
			return nil, err
		}
		return added(effect.NewGrowImage(s.env, a.Image, a.StartMargin, a.EndMargin, a.DurationValue(), fade, now))

	case command.OpFlyout:
		a, err := command.DecodeArgs(c, command.FlyoutArgs{Alpha: 1, Height: 1})
		if err != nil || len(s.available(c.Op, a.Image)) == 0 {
			return nil, err
		}
		return added(effect.NewFlyout(s.env, a.Image, a.Alpha, a.Height, a.Margin, a.DelayValue(), now))

	case command.OpPulseImage:
		a, err := command.DecodeArgs(c, command.PulseImageArgs{})
		if err != nil || len(s.available(c.Op, a.Image)) == 0 {
			return nil, err
		}
		return added(effect.NewPulseImage(s.env, a.Image, now))

	case command.OpHorizontalScroll, command.OpVerticalScroll:
		a, err := command.DecodeArgs(c, command.ScrollArgs{Speed: effect.DefaultScrollSpeed, Spacing: effect.DefaultScrollSpacing})
		if err != nil {
			return nil, err
		}
		images := s.available(c.Op, a.Images...)
		if len(images) == 0 {
			return nil, nil
		}
		axis := effect.Horizontal
		if c.Op == command.OpVerticalScroll {
			axis = effect.Vertical
		}
		return added(effect.NewScroll(s.env, axis, images, a.Speed, a.Reverse, a.Margin, a.Spacing, now))

	case command.OpPlayVideos:
		a, err := command.DecodeArgs(c, command.PlayVideosArgs{Alpha: 1})
		if err != nil {
			return nil, err
		}
		videos := s.available(c.Op, a.Videos...)
		if len(videos) == 0 {
			return nil, nil
		}
		fit, err := gfx.ParseFitMode(a.Fit)
		if err != nil {
			return nil, err
		}
		return added(effect.NewVideoPlayback(s.env, videos, a.Margin, a.Alpha, fit, now))
	}

	s.log.Warnw("unknown opcode", "op", c.Op)
	return nil, nil
}
