package ipc

import (
	"context"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"

	"github.com/matt-g-everett/marquee/command"
)

// DefaultTimeout bounds a client's connect and IO.
const DefaultTimeout = 2 * time.Second

// Client sends one command per connection to a renderer. Failing to
// connect is the normal result when no renderer is running, so the
// boolean helpers report it rather than returning an error.
type Client struct {
	Addr     string
	Timeout  time.Duration
	MaxFrame int
}

// NewClient returns a client for the listener at addr.
func NewClient(addr string, timeout time.Duration) *Client {
	c := new(Client)
	c.Addr = addr
	c.Timeout = timeout
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	c.MaxFrame = command.DefaultMaxFrame
	return c
}

func (c *Client) dial() (net.Conn, error) {
	conn, err := net.DialTimeout("tcp", c.Addr, c.Timeout)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", c.Addr)
	}
	_ = conn.SetDeadline(time.Now().Add(c.Timeout))
	return conn, nil
}

// Do sends cmd without waiting for a reply.
func (c *Client) Do(cmd command.Command) error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()
	return errors.Wrapf(command.Write(conn, cmd), "send %s", cmd.Op)
}

// Send is Do reporting success as a boolean.
func (c *Client) Send(cmd command.Command) bool {
	return c.Do(cmd) == nil
}

// Query sends cmd and reads the framed reply.
func (c *Client) Query(cmd command.Command) (command.Response, error) {
	conn, err := c.dial()
	if err != nil {
		return command.Response{}, err
	}
	defer conn.Close()
	if err := command.Write(conn, cmd); err != nil {
		return command.Response{}, errors.Wrapf(err, "send %s", cmd.Op)
	}
	return command.ReadResponse(conn, c.MaxFrame)
}

// Get returns the state stored under key. Absent keys and unreachable
// renderers both report false.
func (c *Client) Get(key string) (any, bool) {
	resp, err := c.Query(command.GetState(key))
	if err != nil || !resp.Found {
		return nil, false
	}
	return resp.Value, true
}

// Set stores value under key.
func (c *Client) Set(key string, value any) bool {
	return c.Send(command.SetState(key, value))
}

// WaitReady polls with noop until the renderer answers or timeout passes.
func (c *Client) WaitReady(ctx context.Context, timeout time.Duration) bool {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond
	b.MaxElapsedTime = timeout

	err := backoff.Retry(func() error {
		return c.Do(command.Noop())
	}, backoff.WithContext(b, ctx))
	return err == nil
}
