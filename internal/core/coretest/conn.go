// Package coretest holds fakes shared by the tests of several packages.
package coretest

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/dkeye/peerchat/internal/core"
	"github.com/dkeye/peerchat/internal/domain"
)

var ErrFull = errors.New("fake connection full")

// Conn is an in-memory core.SignalConnection that records every frame.
type Conn struct {
	mu     sync.Mutex
	frames []core.Frame
	full   bool
	closed bool
}

func NewConn() *Conn { return &Conn{} }

func (c *Conn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("connection closed")
	}
	if c.full {
		return ErrFull
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *Conn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// SetFull makes every following TrySend fail with ErrFull.
func (c *Conn) SetFull(full bool) {
	c.mu.Lock()
	c.full = full
	c.mu.Unlock()
}

func (c *Conn) Reset() {
	c.mu.Lock()
	c.frames = nil
	c.mu.Unlock()
}

// Events decodes every recorded frame.
func (c *Conn) Events(t testing.TB) []core.Envelope {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.Envelope, 0, len(c.frames))
	for _, f := range c.frames {
		var env core.Envelope
		if err := json.Unmarshal(f, &env); err != nil {
			t.Fatalf("decode frame %q: %v", f, err)
		}
		out = append(out, env)
	}
	return out
}

// Named returns the recorded events called name, in arrival order.
func (c *Conn) Named(t testing.TB, name string) []core.Envelope {
	t.Helper()
	var out []core.Envelope
	for _, env := range c.Events(t) {
		if env.Event == name {
			out = append(out, env)
		}
	}
	return out
}

// Decode unmarshals the data of env into T.
func Decode[T any](t testing.TB, env core.Envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode %s payload: %v", env.Event, err)
	}
	return v
}

// NewSession builds a member session over a fresh fake connection.
func NewSession(sid core.SessionID, uid domain.UserID, name string) (core.MemberSession, *Conn) {
	conn := NewConn()
	id := &domain.Identity{ID: uid, DisplayName: name}
	return core.NewMemberSession(sid, domain.NewMember(id), conn), conn
}
