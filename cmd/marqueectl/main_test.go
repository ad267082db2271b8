package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/matt-g-everett/marquee/command"
	"github.com/matt-g-everett/marquee/config"
	"github.com/matt-g-everett/marquee/ipc"
	"github.com/matt-g-everett/marquee/logutil"
)

func startListener(t *testing.T) (*ctl, *ipc.Queue, *bytes.Buffer, func()) {
	t.Helper()
	cfg := config.Default()
	cfg.Listener.Host = "127.0.0.1"
	cfg.Listener.Port = 0
	cfg.Listener.AcceptTimeout = 20 * time.Millisecond

	q := ipc.NewQueue(cfg.Listener.QueueSize)
	l := ipc.NewListener(cfg.Listener, q, logutil.Discard)
	require.NoError(t, l.Listen())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Serve(ctx) }()

	out := new(bytes.Buffer)
	c := &ctl{
		config: cfg,
		client: ipc.NewClient(l.Addr(), time.Second),
		log:    logutil.Discard,
		stdout: out,
	}
	stop := func() {
		cancel()
		require.NoError(t, <-done)
	}
	return c, q, out, stop
}

// drain waits until every earlier connection was served and returns what
// was queued.
func drain(t *testing.T, c *ctl, q *ipc.Queue) []command.Command {
	t.Helper()
	_, err := c.client.Query(command.GetState("sync"))
	require.NoError(t, err)
	var out []command.Command
	for {
		cmd, ok := q.TryPop()
		if !ok {
			return out
		}
		out = append(out, cmd)
	}
}

func TestState(t *testing.T) {
	defer goleak.VerifyNone(t)
	c, _, out, stop := startListener(t)
	defer stop()

	require.NoError(t, c.run([]string{"set-state", "last_event", "startup"}))
	require.NoError(t, c.run([]string{"set-state", "count", "3"}))
	require.NoError(t, c.run([]string{"get-state", "last_event"}))
	require.NoError(t, c.run([]string{"get-state", "count"}))
	require.NoError(t, c.run([]string{"send", "get-state", "key=count"}))
	assert.Equal(t, "startup\n3\n3\n", out.String())

	assert.ErrorIs(t, c.run([]string{"get-state", "never_set"}), errAbsent)
	assert.Error(t, c.run([]string{"get-state"}))
	assert.Error(t, c.run([]string{"set-state", "k"}))
}

func TestSendAndScripts(t *testing.T) {
	defer goleak.VerifyNone(t)
	c, q, _, stop := startListener(t)
	defer stop()

	require.NoError(t, c.run([]string{"send", "show-image", "image=/media/a b.png", "margin=4"}))
	require.NoError(t, c.run([]string{"background", "random"}))
	require.NoError(t, c.run([]string{"background", "1", "0", "0.5"}))

	script := filepath.Join(t.TempDir(), "game-start.txt")
	require.NoError(t, os.WriteFile(script, []byte("# game start\nclear\npulse-image image=logo.svg\n"), 0o644))
	require.NoError(t, c.run([]string{"run", script}))

	got := drain(t, c, q)
	require.Len(t, got, 4)
	assert.Equal(t, command.ShowImage("/media/a b.png", 4), got[0])

	assert.Equal(t, command.OpSetBackground, got[1].Op)
	_, err := command.DecodeArgs(got[1], command.SetBackgroundArgs{})
	assert.NoError(t, err, "random colours are in range")

	assert.Equal(t, command.SetBackground(1, 0, 0.5), got[2])
	assert.Equal(t, command.List(command.Clear(), command.PulseImage("logo.svg")), got[3])
}

func TestUsageErrors(t *testing.T) {
	defer goleak.VerifyNone(t)
	c, q, _, stop := startListener(t)
	defer stop()

	assert.Error(t, c.run([]string{"dance"}))
	assert.Error(t, c.run([]string{"send"}))
	assert.Error(t, c.run([]string{"send", "show-image", "a.png"}))
	assert.Error(t, c.run([]string{"background", "teal"}))
	assert.Error(t, c.run([]string{"background", "1", "x", "0"}))
	assert.Error(t, c.run([]string{"run", filepath.Join(t.TempDir(), "missing.txt")}))
	assert.Empty(t, drain(t, c, q))
}

func TestStartWhenRunning(t *testing.T) {
	defer goleak.VerifyNone(t)
	c, q, _, stop := startListener(t)
	defer stop()

	require.NoError(t, c.run([]string{"start", "-renderer", "/nonexistent/marquee"}))
	got := drain(t, c, q)
	require.Len(t, got, 1)
	assert.Equal(t, command.OpNoop, got[0].Op)
}

func TestNoRenderer(t *testing.T) {
	c, _, _, stop := startListener(t)
	stop()

	assert.Error(t, c.run([]string{"send", "clear"}))
	assert.Error(t, c.run([]string{"start", "-renderer", "/nonexistent/marquee"}))
}
