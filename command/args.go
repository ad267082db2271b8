package command

import (
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

// ErrArgument is wrapped by argument validation errors.
var ErrArgument = errors.New("bad argument")

// ShowImageArgs are the arguments of show-image.
type ShowImageArgs struct {
	Image  string  `mapstructure:"image"`
	Margin float64 `mapstructure:"margin"`
}

// Validate checks required arguments.
func (a *ShowImageArgs) Validate() error { return requireImage(a.Image) }

// GrowImageArgs are the arguments of grow-image. Duration is in seconds.
type GrowImageArgs struct {
	Image       string  `mapstructure:"image"`
	StartMargin float64 `mapstructure:"start-margin"`
	EndMargin   float64 `mapstructure:"end-margin"`
	Duration    float64 `mapstructure:"duration"`
	Fade        string  `mapstructure:"fade"`
}

// Validate checks required arguments.
func (a *GrowImageArgs) Validate() error {
	if a.Duration < 0 {
		return errors.Wrapf(ErrArgument, "negative duration %v", a.Duration)
	}
	return requireImage(a.Image)
}

// DurationValue converts Duration to a time.Duration.
func (a *GrowImageArgs) DurationValue() time.Duration {
	return time.Duration(a.Duration * float64(time.Second))
}

// FlyoutArgs are the arguments of flyout. Delay is in seconds.
type FlyoutArgs struct {
	Image  string  `mapstructure:"image"`
	Alpha  float64 `mapstructure:"alpha"`
	Height float64 `mapstructure:"height"`
	Margin float64 `mapstructure:"margin"`
	Delay  float64 `mapstructure:"delay"`
}

// Validate checks required arguments.
func (a *FlyoutArgs) Validate() error {
	if a.Delay < 0 {
		return errors.Wrapf(ErrArgument, "negative delay %v", a.Delay)
	}
	return requireImage(a.Image)
}

// DelayValue converts Delay to a time.Duration.
func (a *FlyoutArgs) DelayValue() time.Duration {
	return time.Duration(a.Delay * float64(time.Second))
}

// PulseImageArgs are the arguments of pulse-image.
type PulseImageArgs struct {
	Image string `mapstructure:"image"`
}

// Validate checks required arguments.
func (a *PulseImageArgs) Validate() error { return requireImage(a.Image) }

// ScrollArgs are the arguments of horizontal-scroll and vertical-scroll.
type ScrollArgs struct {
	Images  []string `mapstructure:"images"`
	Speed   float64  `mapstructure:"speed"`
	Reverse bool     `mapstructure:"reverse"`
	Margin  float64  `mapstructure:"margin"`
	Spacing float64  `mapstructure:"spacing"`
}

// Validate checks required arguments.
func (a *ScrollArgs) Validate() error {
	if len(a.Images) == 0 {
		return errors.Wrap(ErrArgument, "no images")
	}
	return nil
}

// PlayVideosArgs are the arguments of play-videos.
type PlayVideosArgs struct {
	Videos []string `mapstructure:"videos"`
	Margin float64  `mapstructure:"margin"`
	Alpha  float64  `mapstructure:"alpha"`
	Fit    string   `mapstructure:"fit"`
}

// Validate checks required arguments.
func (a *PlayVideosArgs) Validate() error {
	if len(a.Videos) == 0 {
		return errors.Wrap(ErrArgument, "no videos")
	}
	return nil
}

// SetBackgroundArgs are the arguments of set-background.
type SetBackgroundArgs struct {
	Color []float64 `mapstructure:"color"`
}

// Validate checks for exactly three channels, each in [0, 1].
func (a *SetBackgroundArgs) Validate() error {
	if len(a.Color) != 3 {
		return errors.Wrapf(ErrArgument, "colour needs 3 channels, got %d", len(a.Color))
	}
	for _, c := range a.Color {
		if c < 0 || c > 1 {
			return errors.Wrapf(ErrArgument, "colour channel %v outside [0, 1]", c)
		}
	}
	return nil
}

// StateArgs are the arguments of set-state and get-state.
type StateArgs struct {
	Key   string `mapstructure:"key"`
	Value any    `mapstructure:"value"`
}

// Validate checks required arguments.
func (a *StateArgs) Validate() error {
	if a.Key == "" {
		return errors.Wrap(ErrArgument, "missing key")
	}
	return nil
}

func requireImage(image string) error {
	if image == "" {
		return errors.Wrap(ErrArgument, "missing image")
	}
	return nil
}

// DecodeArgs decodes c.Args over defaults and validates the result. Inputs
// are weakly typed, so "1.5" decodes into a float64 field.
func DecodeArgs[T any](c Command, defaults T) (T, error) {
	out := defaults
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(c.Args); err != nil {
		return out, errors.Wrapf(err, "%s arguments", c.Op)
	}
	if v, ok := any(&out).(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return out, errors.Wrapf(err, "%s", c.Op)
		}
	}
	return out, nil
}
