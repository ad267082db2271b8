// Package command defines the commands sent to the marquee renderer and
// their wire encoding.
package command

import (
	"fmt"
	"strings"
	"time"
)

// Opcode names a command.
type Opcode string

// Opcodes understood by the renderer.
const (
	OpNoop             Opcode = "noop"
	OpClear            Opcode = "clear"
	OpClose            Opcode = "close"
	OpShowImage        Opcode = "show-image"
	OpGrowImage        Opcode = "grow-image"
	OpFlyout           Opcode = "flyout"
	OpPulseImage       Opcode = "pulse-image"
	OpHorizontalScroll Opcode = "horizontal-scroll"
	OpVerticalScroll   Opcode = "vertical-scroll"
	OpPlayVideos       Opcode = "play-videos"
	OpSetBackground    Opcode = "set-background"
	OpSetState         Opcode = "set-state"
	OpGetState         Opcode = "get-state"
	OpCommandList      Opcode = "command-list"
)

// Opcodes lists every known opcode.
var Opcodes = []Opcode{
	OpNoop, OpClear, OpClose, OpShowImage, OpGrowImage, OpFlyout, OpPulseImage,
	OpHorizontalScroll, OpVerticalScroll, OpPlayVideos, OpSetBackground,
	OpSetState, OpGetState, OpCommandList,
}

// Known reports whether o is one of Opcodes.
func (o Opcode) Known() bool {
	for _, k := range Opcodes {
		if o == k {
			return true
		}
	}
	return false
}

// A Command is an opcode with its arguments. Commands is only used by
// command-list. Argument values use the JSON data model: float64, string,
// bool, []any and map[string]any.
type Command struct {
	Op       Opcode         `json:"op"`
	Args     map[string]any `json:"args,omitempty"`
	Commands []Command      `json:"commands,omitempty"`
}

// Contains reports whether c is, or recursively contains, an op command.
func (c Command) Contains(op Opcode) bool {
	if c.Op == op {
		return true
	}
	for _, sub := range c.Commands {
		if sub.Contains(op) {
			return true
		}
	}
	return false
}

func (c Command) String() string {
	if c.Op == OpCommandList {
		ops := make([]string, len(c.Commands))
		for i, sub := range c.Commands {
			ops[i] = sub.String()
		}
		return fmt.Sprintf("%s[%s]", c.Op, strings.Join(ops, ", "))
	}
	if len(c.Args) == 0 {
		return string(c.Op)
	}
	return fmt.Sprintf("%s%v", c.Op, c.Args)
}

func list(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// Noop does nothing; it is used to probe for a running renderer.
func Noop() Command { return Command{Op: OpNoop} }

// Clear stops every effect.
func Clear() Command { return Command{Op: OpClear} }

// Close shuts the renderer down.
func Close() Command { return Command{Op: OpClose} }

// ShowImage fades in an image.
func ShowImage(image string, margin float64) Command {
	return Command{Op: OpShowImage, Args: map[string]any{"image": image, "margin": margin}}
}

// GrowImage animates an image's margin. Fade is "none", "in" or "out".
func GrowImage(image string, startMargin, endMargin float64, duration time.Duration, fade string) Command {
	return Command{Op: OpGrowImage, Args: map[string]any{
		"image":        image,
		"start-margin": startMargin,
		"end-margin":   endMargin,
		"duration":     duration.Seconds(),
		"fade":         fade,
	}}
}

// Flyout slides an image in from the edge.
func Flyout(image string, alpha, height, margin float64, delay time.Duration) Command {
	return Command{Op: OpFlyout, Args: map[string]any{
		"image":  image,
		"alpha":  alpha,
		"height": height,
		"margin": margin,
		"delay":  delay.Seconds(),
	}}
}

// PulseImage pulses an image.
func PulseImage(image string) Command {
	return Command{Op: OpPulseImage, Args: map[string]any{"image": image}}
}

func scroll(op Opcode, images []string, speed float64, reverse bool, margin, spacing float64) Command {
	return Command{Op: op, Args: map[string]any{
		"images":  list(images),
		"speed":   speed,
		"reverse": reverse,
		"margin":  margin,
		"spacing": spacing,
	}}
}

// HorizontalScroll scrolls images across the display.
func HorizontalScroll(images []string, speed float64, reverse bool, margin, spacing float64) Command {
	return scroll(OpHorizontalScroll, images, speed, reverse, margin, spacing)
}

// VerticalScroll scrolls images up or down the display.
func VerticalScroll(images []string, speed float64, reverse bool, margin, spacing float64) Command {
	return scroll(OpVerticalScroll, images, speed, reverse, margin, spacing)
}

// PlayVideos plays videos in order. Fit is "fill", "fit", "stretch" or
// "center".
func PlayVideos(videos []string, margin, alpha float64, fit string) Command {
	return Command{Op: OpPlayVideos, Args: map[string]any{
		"videos": list(videos),
		"margin": margin,
		"alpha":  alpha,
		"fit":    fit,
	}}
}

// SetBackground retargets the background colour; channels are in [0, 1].
func SetBackground(r, g, b float64) Command {
	return Command{Op: OpSetBackground, Args: map[string]any{"color": []any{r, g, b}}}
}

// SetState stores value under key in the renderer's state store.
func SetState(key string, value any) Command {
	return Command{Op: OpSetState, Args: map[string]any{"key": key, "value": value}}
}

// GetState reads key from the renderer's state store.
func GetState(key string) Command {
	return Command{Op: OpGetState, Args: map[string]any{"key": key}}
}

// List batches commands; they are applied in order.
func List(cmds ...Command) Command {
	return Command{Op: OpCommandList, Commands: cmds}
}
