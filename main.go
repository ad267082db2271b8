package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cast"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matt-g-everett/marquee/config"
	"github.com/matt-g-everett/marquee/effect"
	"github.com/matt-g-everett/marquee/gfx"
	"github.com/matt-g-everett/marquee/ipc"
	"github.com/matt-g-everett/marquee/logutil"
	"github.com/matt-g-everett/marquee/media"
	"github.com/matt-g-everett/marquee/stream"
)

type app struct {
	Config   config.Config
	Log      *zap.SugaredLogger
	Canvas   *gfx.Canvas
	Listener *ipc.Listener
	Streamer *stream.Streamer
}

func newApp(cfg config.Config, log *zap.SugaredLogger) *app {
	a := new(app)
	a.Config = cfg
	a.Log = log
	return a
}

func (a *app) setup(display int) error {
	bounds, err := gfx.SelectDisplay(a.Config.DisplayRects(), display)
	if err != nil {
		return err
	}
	a.Log.Infow("display selected", "index", display, "bounds", bounds)

	clk := clock.New()
	a.Canvas = gfx.NewCanvas(int(bounds.W), int(bounds.H), a.Config.Render.FPS, clk)
	manager := stream.NewManager(a.Canvas, a.Config.Render.MaxEffects, a.Log.Named("render"))

	queue := ipc.NewQueue(a.Config.Listener.QueueSize)
	a.Listener = ipc.NewListener(a.Config.Listener, queue, a.Log.Named("listener"))
	if err := a.Listener.Listen(); err != nil {
		return multierr.Append(err, a.Canvas.Close())
	}

	env := effect.Env{
		Surface:   a.Canvas,
		Loader:    media.NewFileLoader(),
		AntiAlias: a.Config.Render.AntiAlias,
		Logger:    a.Log.Named("effect"),
	}
	a.Streamer = stream.NewStreamer(manager, queue, env, clk, a.Log.Named("render"))
	a.Streamer.Send = ipc.NewClient(a.Listener.Addr(), ipc.DefaultTimeout).Send
	return nil
}

// run serves the listener on its own goroutine and the render loop on this
// one until close arrives.
func (a *app) run() error {
	events := stream.NewSignalEvents(os.Interrupt, syscall.SIGTERM)
	defer events.Stop()
	a.Streamer.Events = events

	ctx, cancel := context.WithCancel(context.Background())
	var g errgroup.Group
	g.Go(func() error { return a.Listener.Serve(ctx) })

	err := a.Streamer.Run()
	cancel()
	return multierr.Append(err, g.Wait())
}

func main() {
	// Parse command line parameters
	configPath := flag.String("config", "config.yaml", "YAML config file.")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config file] [display-index]\n", os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(),
			"display-index: n, auto (%d) for the shortest display, debug (%d) for a strip\n",
			gfx.DisplayAuto, gfx.DisplayDebug)
		flag.PrintDefaults()
	}
	flag.Parse()

	display, err := parseDisplay(flag.Arg(0))
	if err != nil {
		flag.Usage()
		os.Exit(2)
	}

	// Read the config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logutil.New("marquee", cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	a := newApp(cfg, log)
	code := 0
	if err := a.setup(display); err != nil {
		log.Errorw("startup failed", "error", err)
		code = 1
	} else if err := a.run(); err != nil {
		log.Errorw("shutdown failed", "error", err)
		code = 1
	}
	_ = log.Sync()
	os.Exit(code)
}

// parseDisplay reads the display argument. Negative indices must follow
// "--" on the command line, so the names auto and debug are accepted too.
func parseDisplay(arg string) (int, error) {
	switch arg {
	case "", "auto":
		return gfx.DisplayAuto, nil
	case "debug":
		return gfx.DisplayDebug, nil
	}
	return cast.ToIntE(arg)
}
