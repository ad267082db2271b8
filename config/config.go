// Package config reads the marquee YAML configuration.
package config

import (
	"io"
	"io/fs"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/matt-g-everett/marquee/gfx"
)

// Config is shared by the renderer and its clients.
type Config struct {
	Listener Listener  `yaml:"listener"`
	Render   Render    `yaml:"render"`
	Displays []Display `yaml:"displays"`
	Mqtt     struct {
		URL      string `yaml:"url"`
		ClientID string `yaml:"clientId"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Topics   struct {
			Commands string `yaml:"commands"`
		} `yaml:"topics"`
	} `yaml:"mqtt"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Log Log `yaml:"log"`
}

// Listener configures the command socket.
type Listener struct {
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	AcceptTimeout time.Duration `yaml:"acceptTimeout"`
	IOTimeout     time.Duration `yaml:"ioTimeout"`
	MaxFrameBytes int           `yaml:"maxFrameBytes"`
	QueueSize     int           `yaml:"queueSize"`
	MaxStateKeys  int           `yaml:"maxStateKeys"`
}

// Addr is the host:port the listener binds and clients dial.
func (l Listener) Addr() string {
	return net.JoinHostPort(l.Host, strconv.Itoa(l.Port))
}

// Render configures the main loop.
type Render struct {
	MaxEffects int     `yaml:"maxEffects"`
	FPS        float64 `yaml:"fps"`
	AntiAlias  float64 `yaml:"antiAlias"`
}

// Display is the bounds of one physical display.
type Display struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// Log configures logging. An empty File logs to stderr.
type Log struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	var c Config
	c.Listener = Listener{
		Host:          "localhost",
		Port:          6000,
		AcceptTimeout: 500 * time.Millisecond,
		IOTimeout:     2 * time.Second,
		MaxFrameBytes: 4 << 20,
		QueueSize:     256,
		MaxStateKeys:  1024,
	}
	c.Render = Render{MaxEffects: 8, FPS: 60, AntiAlias: 2}
	c.Displays = []Display{{W: 1920, H: 1080}}
	c.Mqtt.ClientID = "marquee"
	c.Mqtt.Topics.Commands = "marquee/commands"
	c.HTTP.Addr = "localhost:3000"
	c.Log = Log{Level: "info", MaxSizeMB: 10, MaxBackups: 3, MaxAgeDays: 28}
	return c
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	c := Default()
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	} else if err != nil {
		return c, errors.Wrap(err, "open config")
	}
	defer f.Close()

	if err := Decode(f, &c); err != nil {
		return c, errors.Wrapf(err, "read %s", path)
	}
	return c, nil
}

// Decode reads YAML from r into c, keeping fields r does not mention.
func Decode(r io.Reader, c *Config) error {
	err := yaml.NewDecoder(r).Decode(c)
	if err == io.EOF {
		err = nil
	}
	if err != nil {
		return err
	}
	return c.validate()
}

func (c *Config) validate() error {
	switch {
	case c.Listener.Port <= 0 || c.Listener.Port > 65535:
		return errors.Errorf("listener.port %d out of range", c.Listener.Port)
	case c.Listener.QueueSize <= 0:
		return errors.New("listener.queueSize must be positive")
	case c.Listener.MaxFrameBytes <= 0:
		return errors.New("listener.maxFrameBytes must be positive")
	case c.Render.MaxEffects <= 0:
		return errors.New("render.maxEffects must be positive")
	}
	return nil
}

// DisplayRects converts the configured displays.
func (c *Config) DisplayRects() []gfx.Rect {
	out := make([]gfx.Rect, len(c.Displays))
	for i, d := range c.Displays {
		out[i] = gfx.Rect{X: d.X, Y: d.Y, W: d.W, H: d.H}
	}
	return out
}
