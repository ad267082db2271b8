package ipc

import (
	"context"
	"net"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/matt-g-everett/marquee/command"
	"github.com/matt-g-everett/marquee/config"
)

// ErrNotListening is returned by Serve before a successful Listen.
var ErrNotListening = errors.New("listener not bound")

// Listener accepts one connection at a time, reads a single framed command
// from it and either answers it from the store or queues it for the render
// loop.
type Listener struct {
	cfg   config.Listener
	queue *Queue
	store *Store
	log   *zap.SugaredLogger
	ln    *net.TCPListener
	ready chan struct{}
}

// NewListener returns a listener feeding queue.
func NewListener(cfg config.Listener, queue *Queue, log *zap.SugaredLogger) *Listener {
	l := new(Listener)
	l.cfg = cfg
	l.queue = queue
	l.store = NewStore(cfg.MaxStateKeys)
	l.log = log
	l.ready = make(chan struct{})
	return l
}

// Listen binds the configured address and closes Ready.
func (l *Listener) Listen() error {
	addr, err := net.ResolveTCPAddr("tcp", l.cfg.Addr())
	if err != nil {
		return errors.Wrap(err, "resolve listener address")
	}
	ln, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", addr)
	}
	l.ln = ln
	close(l.ready)
	l.log.Infow("listening", "addr", ln.Addr().String())
	return nil
}

// Addr is the bound address, or "" before Listen.
func (l *Listener) Addr() string {
	if l.ln == nil {
		return ""
	}
	return l.ln.Addr().String()
}

// Ready is closed once the listener is bound.
func (l *Listener) Ready() <-chan struct{} {
	return l.ready
}

// Serve runs the accept loop until a close command arrives or ctx is done,
// then closes the socket.
func (l *Listener) Serve(ctx context.Context) error {
	if l.ln == nil {
		return ErrNotListening
	}
	defer l.ln.Close()

	for ctx.Err() == nil {
		if err := l.ln.SetDeadline(time.Now().Add(l.cfg.AcceptTimeout)); err != nil {
			return errors.Wrap(err, "set accept deadline")
		}
		conn, err := l.ln.Accept()
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return errors.Wrap(err, "accept")
		}
		if l.handle(ctx, conn) {
			l.log.Infow("close received, listener stopping")
			return nil
		}
	}
	return nil
}

// handle serves one connection and reports whether it carried close.
func (l *Listener) handle(ctx context.Context, conn net.Conn) bool {
	defer conn.Close()
	if l.cfg.IOTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(l.cfg.IOTimeout))
	}

	limit := l.cfg.MaxFrameBytes
	if limit <= 0 {
		limit = command.DefaultMaxFrame
	}
	cmd, err := command.Read(conn, limit)
	if err != nil {
		l.log.Warnw("dropping connection", "remote", conn.RemoteAddr().String(), "error", err)
		return false
	}

	switch cmd.Op {
	case command.OpSetState:
		l.setState(cmd)
		return false
	case command.OpGetState:
		l.getState(conn, cmd)
		return false
	case command.OpCommandList:
		cmd = l.strip(cmd)
		if len(cmd.Commands) == 0 {
			return false
		}
	}

	if cmd.Contains(command.OpClose) {
		if err := l.queue.PushWait(ctx, cmd); err != nil {
			l.log.Warnw("close not queued", "error", err)
		}
		return true
	}
	if !l.queue.Push(cmd) {
		l.log.Warnw("queue full, dropping command", "op", cmd.Op, "queued", l.queue.Len())
	}
	return false
}

// strip applies the set-state commands nested in a command-list and returns
// the list without any state commands.
func (l *Listener) strip(list command.Command) command.Command {
	out := command.Command{Op: list.Op, Args: list.Args}
	for _, sub := range list.Commands {
		switch sub.Op {
		case command.OpSetState:
			l.setState(sub)
		case command.OpGetState:
			l.log.Warnw("get-state inside command-list has no reply channel, ignored")
		case command.OpCommandList:
			if nested := l.strip(sub); len(nested.Commands) > 0 {
				out.Commands = append(out.Commands, nested)
			}
		default:
			out.Commands = append(out.Commands, sub)
		}
	}
	return out
}

func (l *Listener) setState(cmd command.Command) {
	args, err := command.DecodeArgs(cmd, command.StateArgs{})
	if err != nil {
		l.log.Warnw("bad set-state", "error", err)
		return
	}
	if err := l.store.Set(args.Key, args.Value); err != nil {
		l.log.Warnw("set-state rejected", "key", args.Key, "error", err)
		return
	}
	l.log.Debugw("state set", "key", args.Key)
}

func (l *Listener) getState(conn net.Conn, cmd command.Command) {
	var resp command.Response
	args, err := command.DecodeArgs(cmd, command.StateArgs{})
	if err != nil {
		l.log.Warnw("bad get-state", "error", err)
	} else {
		resp.Value, resp.Found = l.store.Get(args.Key)
	}
	if err := command.WriteResponse(conn, resp); err != nil {
		l.log.Warnw("writing get-state response", "error", err)
	}
}
