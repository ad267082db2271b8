package ipc

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/matt-g-everett/marquee/command"
	"github.com/matt-g-everett/marquee/config"
	"github.com/matt-g-everett/marquee/logutil"
)

func testConfig() config.Listener {
	return config.Listener{
		Host:          "127.0.0.1",
		Port:          0,
		AcceptTimeout: 20 * time.Millisecond,
		IOTimeout:     time.Second,
		MaxFrameBytes: 1 << 10,
		QueueSize:     8,
		MaxStateKeys:  4,
	}
}

type harness struct {
	l      *Listener
	q      *Queue
	client *Client
	cancel context.CancelFunc
	errc   chan error
}

func start(t *testing.T) *harness {
	t.Helper()
	cfg := testConfig()
	h := &harness{q: NewQueue(cfg.QueueSize), errc: make(chan error, 1)}
	h.l = NewListener(cfg, h.q, logutil.Discard)
	require.NoError(t, h.l.Listen())
	select {
	case <-h.l.Ready():
	default:
		t.Fatal("Ready not closed after Listen")
	}

	var ctx context.Context
	ctx, h.cancel = context.WithCancel(context.Background())
	go func() { h.errc <- h.l.Serve(ctx) }()
	h.client = NewClient(h.l.Addr(), time.Second)
	return h
}

func (h *harness) stop(t *testing.T) {
	t.Helper()
	h.cancel()
	select {
	case err := <-h.errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
}

// sync returns once every earlier connection has been served, since the
// listener handles connections one at a time in accept order.
func (h *harness) sync(t *testing.T) {
	t.Helper()
	_, err := h.client.Query(command.GetState("sync"))
	require.NoError(t, err)
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestStateRoundTrip(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := start(t)
	defer h.stop(t)

	require.True(t, h.client.Set("last_event", "startup"))
	v, ok := h.client.Get("last_event")
	assert.True(t, ok)
	assert.Equal(t, "startup", v)

	require.True(t, h.client.Set("count", 3))
	v, ok = h.client.Get("count")
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)

	assert.Zero(t, h.q.Len(), "state commands never reach the queue")
}

func TestGetStateAbsent(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := start(t)
	defer h.stop(t)

	resp, err := h.client.Query(command.GetState("never_set"))
	require.NoError(t, err)
	assert.False(t, resp.Found)
	assert.Nil(t, resp.Value)

	_, ok := h.client.Get("never_set")
	assert.False(t, ok)
}

func TestCommandsQueuedInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := start(t)
	defer h.stop(t)

	require.True(t, h.client.Send(command.ShowImage("a.png", 0)))
	require.True(t, h.client.Send(command.Clear()))
	require.True(t, h.client.Send(command.Noop()))
	h.sync(t)

	var ops []command.Opcode
	for {
		c, ok := h.q.TryPop()
		if !ok {
			break
		}
		ops = append(ops, c.Op)
	}
	assert.Equal(t, []command.Opcode{command.OpShowImage, command.OpClear, command.OpNoop}, ops)
}

func TestCommandListStateServedInPlace(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := start(t)
	defer h.stop(t)

	require.True(t, h.client.Send(command.List(
		command.SetState("k", "v"),
		command.ShowImage("a.png", 0),
		command.GetState("k"),
		command.List(command.SetState("j", "w")),
	)))
	require.True(t, h.client.Send(command.List(command.SetState("only", true))))
	h.sync(t)

	c, ok := h.q.TryPop()
	require.True(t, ok)
	assert.Equal(t, command.OpCommandList, c.Op)
	require.Len(t, c.Commands, 1)
	assert.Equal(t, command.OpShowImage, c.Commands[0].Op)
	_, ok = h.q.TryPop()
	assert.False(t, ok, "a list of only state commands is not queued")

	v, _ := h.client.Get("k")
	assert.Equal(t, "v", v)
	v, _ = h.client.Get("j")
	assert.Equal(t, "w", v)
	v, _ = h.client.Get("only")
	assert.Equal(t, true, v)
}

func TestCloseEndsServe(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := start(t)

	require.True(t, h.client.Send(command.Close()))
	select {
	case err := <-h.errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after close")
	}
	h.cancel()

	c, ok := h.q.TryPop()
	require.True(t, ok)
	assert.Equal(t, command.OpClose, c.Op)
	assert.False(t, h.client.Send(command.Noop()), "socket closed")
}

func TestNestedCloseEndsServe(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := start(t)

	require.True(t, h.client.Send(command.List(command.Clear(), command.List(command.Close()))))
	select {
	case err := <-h.errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after nested close")
	}
	h.cancel()

	c, ok := h.q.TryPop()
	require.True(t, ok)
	assert.True(t, c.Contains(command.OpClose))
}

func TestMalformedFramesDropOnlyThatConnection(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := start(t)
	defer h.stop(t)

	send := func(b []byte) {
		conn, err := net.Dial("tcp", h.l.Addr())
		require.NoError(t, err)
		_, err = conn.Write(b)
		require.NoError(t, err)
		require.NoError(t, conn.Close())
	}

	oversized := make([]byte, command.HeaderSize)
	binary.LittleEndian.PutUint64(oversized, 1<<40)
	send(oversized)

	garbage := make([]byte, command.HeaderSize, command.HeaderSize+5)
	binary.LittleEndian.PutUint64(garbage, 5)
	send(append(garbage, "nope!"...))

	truncated := make([]byte, command.HeaderSize, command.HeaderSize+2)
	binary.LittleEndian.PutUint64(truncated, 10)
	send(append(truncated, "{}"...))

	require.True(t, h.client.Set("still", "alive"))
	v, ok := h.client.Get("still")
	assert.True(t, ok)
	assert.Equal(t, "alive", v)
	assert.Zero(t, h.q.Len())
}

func TestQueueFullDrops(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := start(t)
	defer h.stop(t)

	for i := 0; i < testConfig().QueueSize+2; i++ {
		require.True(t, h.client.Send(command.Noop()))
	}
	h.sync(t)
	assert.Equal(t, testConfig().QueueSize, h.q.Len())
}

func TestServeBeforeListen(t *testing.T) {
	l := NewListener(testConfig(), NewQueue(1), logutil.Discard)
	assert.ErrorIs(t, l.Serve(context.Background()), ErrNotListening)
	assert.Equal(t, "", l.Addr())
}

func TestClientNoRenderer(t *testing.T) {
	defer goleak.VerifyNone(t)
	c := NewClient(freeAddr(t), 200*time.Millisecond)

	assert.False(t, c.Send(command.Noop()))
	assert.False(t, c.Set("k", "v"))
	_, ok := c.Get("k")
	assert.False(t, ok)
	_, err := c.Query(command.GetState("k"))
	assert.Error(t, err)

	begin := time.Now()
	assert.False(t, c.WaitReady(context.Background(), 300*time.Millisecond))
	assert.Less(t, time.Since(begin), 2*time.Second)
}

func TestClientWaitReady(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := start(t)
	defer h.stop(t)

	assert.True(t, h.client.WaitReady(context.Background(), time.Second))
	h.sync(t)
	c, ok := h.q.TryPop()
	require.True(t, ok)
	assert.Equal(t, command.OpNoop, c.Op)
}

func TestQueue(t *testing.T) {
	q := NewQueue(2)
	assert.True(t, q.Push(command.Noop()))
	assert.True(t, q.Push(command.Clear()))
	assert.False(t, q.Push(command.Close()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.PushWait(ctx, command.Close()), context.DeadlineExceeded)

	c, ok := q.TryPop()
	require.True(t, ok)
	assert.Equal(t, command.OpNoop, c.Op)
	require.NoError(t, q.PushWait(context.Background(), command.Close()))
	assert.Equal(t, 2, q.Len())

	c, _ = q.TryPop()
	assert.Equal(t, command.OpClear, c.Op)
	c, _ = q.TryPop()
	assert.Equal(t, command.OpClose, c.Op)
	_, ok = q.TryPop()
	assert.False(t, ok)
}

func TestStore(t *testing.T) {
	s := NewStore(2)
	require.NoError(t, s.Set("a", 1))
	require.NoError(t, s.Set("b", 2))
	assert.ErrorIs(t, s.Set("c", 3), ErrStoreFull)
	require.NoError(t, s.Set("a", "again"), "overwrites are always allowed")

	v, ok := s.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "again", v)
	_, ok = s.Get("c")
	assert.False(t, ok)
	assert.Equal(t, 2, s.Len())

	unbounded := NewStore(0)
	for _, k := range []string{"x", "y", "z"} {
		require.NoError(t, unbounded.Set(k, k))
	}
	assert.Equal(t, 3, unbounded.Len())
}
