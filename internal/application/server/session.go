package server

import (
	"context"
	"errors"

	"github.com/penwyp/go-virus-feed/internal/application/browser"
)

// ErrSessionClosed is returned once the session goroutine has stopped
var ErrSessionClosed = errors.New("session closed")

type command struct {
	fn    func(p *browser.Pipeline)
	reply chan struct{}
}

// Session serializes access to one pipeline. Only the goroutine running
// Run touches the pipeline; callers hand it work through Do.
type Session struct {
	pipeline *browser.Pipeline
	commands chan command
	done     chan struct{}
}

// NewSession creates a session owning p
func NewSession(p *browser.Pipeline) *Session {
	return &Session{
		pipeline: p,
		commands: make(chan command),
		done:     make(chan struct{}),
	}
}

// Run executes commands in arrival order until ctx is done
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-s.commands:
			cmd.fn(s.pipeline)
			close(cmd.reply)
		}
	}
}

// Do runs fn on the session goroutine and waits for it to finish
func (s *Session) Do(ctx context.Context, fn func(p *browser.Pipeline)) error {
	cmd := command{fn: fn, reply: make(chan struct{})}
	select {
	case s.commands <- cmd:
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	<-cmd.reply
	return nil
}
