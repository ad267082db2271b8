// Command marqueectl talks to a running marquee renderer: it starts one,
// sends it commands and reads its state, and bridges HTTP and MQTT to it.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matt-g-everett/marquee/api"
	"github.com/matt-g-everett/marquee/command"
	"github.com/matt-g-everett/marquee/config"
	"github.com/matt-g-everett/marquee/ipc"
	"github.com/matt-g-everett/marquee/logutil"
	"github.com/matt-g-everett/marquee/util"
)

const usage = `usage: marqueectl [-config file] [-timeout d] <command> [args]

commands:
  start [-renderer path] [-display n] [-wait d]   start the renderer unless it is running
  send <op> [key=value ...]                        send one command
  get-state <key>                                  print a stored value, exit 1 if absent
  set-state <key> <value>                          store a value
  background random | <r> <g> <b>                  fade the background colour
  run <file>                                       send a file of commands as one list
  bridge                                           forward HTTP and MQTT to the renderer
`

// errAbsent makes get-state exit 1 without printing an error.
var errAbsent = errors.New("absent")

type ctl struct {
	configPath string
	config     config.Config
	client     *ipc.Client
	log        *zap.SugaredLogger
	stdout     io.Writer
}

func main() {
	configPath := flag.String("config", "config.yaml", "YAML config file.")
	timeout := flag.Duration("timeout", ipc.DefaultTimeout, "Connect and IO timeout.")
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logutil.New("marqueectl", cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	c := &ctl{
		configPath: *configPath,
		config:     cfg,
		client:     ipc.NewClient(cfg.Listener.Addr(), *timeout),
		log:        log,
		stdout:     os.Stdout,
	}
	err = c.run(flag.Args())
	_ = log.Sync()
	switch {
	case err == nil:
	case errors.Is(err, errAbsent):
		os.Exit(1)
	default:
		fmt.Fprintln(os.Stderr, "marqueectl:", err)
		os.Exit(1)
	}
}

func (c *ctl) run(args []string) error {
	name, args := args[0], args[1:]
	switch name {
	case "start":
		return c.start(args)
	case "send":
		return c.send(args)
	case "get-state":
		return c.getState(args)
	case "set-state":
		return c.setState(args)
	case "background":
		return c.background(args)
	case "run":
		return c.runFile(args)
	case "bridge":
		return c.bridge()
	}
	return errors.Errorf("unknown command %q", name)
}

func (c *ctl) start(args []string) error {
	fs := flag.NewFlagSet("start", flag.ContinueOnError)
	renderer := fs.String("renderer", "marquee", "Renderer executable.")
	display := fs.String("display", "auto", "Display index, auto or debug.")
	wait := fs.Duration("wait", 10*time.Second, "How long to wait for the renderer.")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if c.client.Send(command.Noop()) {
		c.log.Infow("renderer already running", "addr", c.client.Addr)
		return nil
	}

	cmd := exec.Command(*renderer, "-config", c.configPath, *display)
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "start %s", *renderer)
	}
	c.log.Infow("renderer started", "pid", cmd.Process.Pid)
	if err := cmd.Process.Release(); err != nil {
		c.log.Warnw("release renderer process", "error", err)
	}

	if !c.client.WaitReady(context.Background(), *wait) {
		return errors.Errorf("renderer not ready after %v", *wait)
	}
	return nil
}

func (c *ctl) do(cmd command.Command) error {
	if cmd.Op == command.OpGetState {
		resp, err := c.client.Query(cmd)
		if err != nil {
			return err
		}
		if !resp.Found {
			return errAbsent
		}
		return c.print(resp.Value)
	}
	return c.client.Do(cmd)
}

func (c *ctl) send(args []string) error {
	cmd, err := command.ParseWords(args)
	if err != nil {
		return err
	}
	return c.do(cmd)
}

func (c *ctl) getState(args []string) error {
	if len(args) != 1 {
		return errors.New("get-state takes one key")
	}
	return c.do(command.GetState(args[0]))
}

func (c *ctl) setState(args []string) error {
	if len(args) != 2 {
		return errors.New("set-state takes a key and a value")
	}
	return c.do(command.SetState(args[0], command.ParseValue(args[1])))
}

func (c *ctl) background(args []string) error {
	switch len(args) {
	case 1:
		if args[0] != "random" {
			break
		}
		col := util.RandomColor()
		c.log.Debugw("random background", "color", col.Hex())
		return c.do(command.SetBackground(col.R, col.G, col.B))
	case 3:
		var rgb [3]float64
		for i, a := range args {
			v, err := cast.ToFloat64E(a)
			if err != nil {
				return errors.Wrapf(err, "colour channel %q", a)
			}
			rgb[i] = v
		}
		return c.do(command.SetBackground(rgb[0], rgb[1], rgb[2]))
	}
	return errors.New("background takes random or three channels in [0, 1]")
}

func (c *ctl) runFile(args []string) error {
	if len(args) != 1 {
		return errors.New("run takes one file")
	}
	text, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	cmd, err := command.ParseScript(string(text))
	if err != nil {
		return errors.Wrap(err, args[0])
	}
	return c.do(cmd)
}

func (c *ctl) bridge() error {
	mqtt.ERROR = zap.NewStdLog(c.log.Desugar().Named("mqtt"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	if addr := c.config.HTTP.Addr; addr != "" {
		g.Go(func() error {
			return api.NewApi(c.client, c.log.Named("http")).Serve(ctx, addr)
		})
	}
	if c.config.Mqtt.URL != "" {
		g.Go(func() error {
			return api.NewBridge(c.config, c.client, c.log.Named("mqtt")).Run(ctx)
		})
	}
	return g.Wait()
}

// print writes scalars as text and everything else as JSON.
func (c *ctl) print(v any) error {
	if s, err := cast.ToStringE(v); err == nil {
		_, err = fmt.Fprintln(c.stdout, s)
		return err
	}
	return json.NewEncoder(c.stdout).Encode(v)
}
