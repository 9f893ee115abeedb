package core

import (
	"sync"
	"time"

	"github.com/dkeye/peerchat/internal/domain"
)

// Frame is one encoded outbound event.
type Frame []byte

type SessionID string

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// MemberSession binds domain.Member and its transport endpoint.
// This is what the registry stores and the router fans out to.
type MemberSession interface {
	ID() SessionID
	Meta() *domain.Member
	Signal() SignalConnection
}

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []MemberSession
}

// RoomService is the live, in-process side of one room.
// Every state transition touching the room happens while its lock is held,
// which is what orders broadcasts within the room. The methods below assume
// the caller holds the lock.
type RoomService interface {
	sync.Locker

	ID() domain.RoomID
	Info() *domain.Room
	SetInfo(info *domain.Room)

	// SetTyping records the typing state of an identity and reports the
	// previous one.
	SetTyping(uid domain.UserID, typing bool) (was bool)
	// AllowMessage applies the room's slow mode to one identity.
	AllowMessage(uid domain.UserID) bool
}

type RoomManager interface {
	GetOrCreate(id domain.RoomID) RoomService
	Count() int
}

// Clock is swapped in tests.
type Clock func() time.Time
