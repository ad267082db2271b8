// Package ipc carries commands from client processes to the render loop: a
// framed TCP listener, the bounded queue it feeds, the state store it owns
// and the client used to talk to it.
package ipc

import (
	"context"

	"github.com/matt-g-everett/marquee/command"
)

// Queue is a bounded FIFO of commands, safe for one producer and one
// consumer on different goroutines.
type Queue struct {
	ch chan command.Command
}

// NewQueue returns a queue holding at most size commands.
func NewQueue(size int) *Queue {
	if size < 1 {
		size = 1
	}
	q := new(Queue)
	q.ch = make(chan command.Command, size)
	return q
}

// Push adds c unless the queue is full, and reports whether it did.
func (q *Queue) Push(c command.Command) bool {
	select {
	case q.ch <- c:
		return true
	default:
		return false
	}
}

// PushWait adds c, waiting for room until ctx is done.
func (q *Queue) PushWait(ctx context.Context, c command.Command) error {
	select {
	case q.ch <- c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryPop removes the oldest command without blocking.
func (q *Queue) TryPop() (command.Command, bool) {
	select {
	case c := <-q.ch:
		return c, true
	default:
		return command.Command{}, false
	}
}

// Len is the number of queued commands.
func (q *Queue) Len() int {
	return len(q.ch)
}
