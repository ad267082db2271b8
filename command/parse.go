package command

import (
	"math"
	"strings"

	"github.com/google/shlex"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// ErrEmptyLine is returned when a line holds no command.
var ErrEmptyLine = errors.New("empty command line")

// listKeys always decode to lists; they may be repeated.
var listKeys = map[string]bool{"images": true, "videos": true, "color": true}

// ParseLine parses the text form of a command:
//
//	show-image image="/media/a b.png" margin=10
//	horizontal-scroll images=a.svg images=b.svg speed=180 reverse=true
//
// Words are split like a shell would. Values that parse as numbers become
// float64 and true/false become booleans; everything else stays a string.
func ParseLine(line string) (Command, error) {
	words, err := shlex.Split(line)
	if err != nil {
		return Command{}, errors.Wrap(err, "split command line")
	}
	return ParseWords(words)
}

// ParseWords parses a command line already split into words, such as a
// program's arguments.
func ParseWords(words []string) (Command, error) {
	if len(words) == 0 {
		return Command{}, ErrEmptyLine
	}

	c := Command{Op: Opcode(words[0])}
	for _, w := range words[1:] {
		key, raw, ok := strings.Cut(w, "=")
		if !ok || key == "" {
			return Command{}, errors.Errorf("%s: expected key=value, got %q", c.Op, w)
		}
		if c.Args == nil {
			c.Args = make(map[string]any)
		}
		v := ParseValue(raw)
		if listKeys[key] {
			prev, _ := c.Args[key].([]any)
			c.Args[key] = append(prev, v)
		} else {
			c.Args[key] = v
		}
	}
	return c, nil
}

// ParseScript parses one command per line into a command-list. Blank lines
// and lines starting with # are skipped.
func ParseScript(text string) (Command, error) {
	var cmds []Command
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		c, err := ParseLine(line)
		if err != nil {
			return Command{}, errors.Wrapf(err, "line %d", i+1)
		}
		cmds = append(cmds, c)
	}
	return List(cmds...), nil
}

// ParseValue converts the text of a value to a finite number, a boolean or,
// failing both, leaves it as a string.
func ParseValue(raw string) any {
	if f, err := cast.ToFloat64E(raw); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	return raw
}
