package app

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/dkeye/peerchat/internal/core"
	"github.com/dkeye/peerchat/internal/domain"
	"github.com/rs/zerolog/log"
)

var (
	ErrSessionExists  = errors.New("session already registered")
	ErrUnknownSession = errors.New("unknown session")
)

type sessionEntry struct {
	RoomID  domain.RoomID
	Session core.MemberSession
	Cancel  context.CancelFunc
}

// presence is the room side of the index: which sessions sit in the room and
// how many of them belong to each identity.
type presence struct {
	sessions map[core.SessionID]core.MemberSession
	counts   map[domain.UserID]int
}

// Registry maps live connections to their identity and current room.
// The session->room and room->sessions indexes change together under mu.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
	rooms    map[domain.RoomID]*presence
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
		rooms:    make(map[domain.RoomID]*presence),
	}
}

func (r *Registry) Register(sess core.MemberSession, cancel context.CancelFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sid := sess.ID()
	if _, ok := r.sessions[sid]; ok {
		return ErrSessionExists
	}
	r.sessions[sid] = &sessionEntry{Session: sess, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("user", string(sess.Meta().Identity.ID)).Msg("registered session")
	return nil
}

func (r *Registry) GetSession(sid core.SessionID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Session, true
	}
	return nil, false
}

func (r *Registry) RoomOf(sid core.SessionID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.sessions[sid]
	if !ok || entry.RoomID == "" {
		return "", false
	}
	return entry.RoomID, true
}

// SetRoom moves a session to room, or out of any room when room is "".
// It returns the room the session held before.
func (r *Registry) SetRoom(sid core.SessionID, room domain.RoomID) (domain.RoomID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[sid]
	if !ok {
		return "", ErrUnknownSession
	}
	prev := entry.RoomID
	if prev == room {
		return prev, nil
	}
	if prev != "" {
		r.detach(prev, entry.Session)
	}
	if room != "" {
		r.attach(room, entry.Session)
	}
	entry.RoomID = room
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("from", string(prev)).Str("room", string(room)).Msg("updated room")
	return prev, nil
}

// Unregister drops the session and its room membership. It is safe to call
// more than once; ok is false when the session was already gone.
func (r *Registry) Unregister(sid core.SessionID) (domain.RoomID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[sid]
	if !ok {
		return "", false
	}
	if entry.RoomID != "" {
		r.detach(entry.RoomID, entry.Session)
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(entry.RoomID)).Msg("unregistered session")
	return entry.RoomID, true
}

func (r *Registry) attach(room domain.RoomID, sess core.MemberSession) {
	p, ok := r.rooms[room]
	if !ok {
		p = &presence{
			sessions: make(map[core.SessionID]core.MemberSession),
			counts:   make(map[domain.UserID]int),
		}
		r.rooms[room] = p
	}
	p.sessions[sess.ID()] = sess
	p.counts[sess.Meta().Identity.ID]++
}

func (r *Registry) detach(room domain.RoomID, sess core.MemberSession) {
	p, ok := r.rooms[room]
	if !ok {
		return
	}
	if _, ok := p.sessions[sess.ID()]; !ok {
		return
	}
	delete(p.sessions, sess.ID())
	uid := sess.Meta().Identity.ID
	if p.counts[uid]--; p.counts[uid] <= 0 {
		delete(p.counts, uid)
	}
	if len(p.sessions) == 0 {
		delete(r.rooms, room)
	}
}

// MembersOf returns the sorted display names present in room, each once.
func (r *Registry) MembersOf(room domain.RoomID) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.rooms[room]
	if !ok {
		return []string{}
	}
	seen := make(map[string]struct{}, len(p.sessions))
	out := make([]string, 0, len(p.sessions))
	for _, s := range p.sessions {
		name := s.Meta().Identity.DisplayName
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// HasIdentity reports whether any live session of uid sits in room.
func (r *Registry) HasIdentity(room domain.RoomID, uid domain.UserID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.rooms[room]
	return ok && p.counts[uid] > 0
}

// PresenceCount is the number of distinct identities in room.
func (r *Registry) PresenceCount(room domain.RoomID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.rooms[room]; ok {
		return len(p.counts)
	}
	return 0
}

// SessionsIn implements core.MemberLister.
func (r *Registry) SessionsIn(room domain.RoomID) []core.MemberSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.rooms[room]
	if !ok {
		return nil
	}
	out := make([]core.MemberSession, 0, len(p.sessions))
	for _, s := range p.sessions {
		out = append(out, s)
	}
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Cancel closes the connection behind sid; its own disconnect path cleans up.
func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}

func (r *Registry) CancelAll() {
	r.mu.RLock()
	cancels := make([]context.CancelFunc, 0, len(r.sessions))
	for _, e := range r.sessions {
		if e.Cancel != nil {
			cancels = append(cancels, e.Cancel)
		}
	}
	r.mu.RUnlock()
	for _, cancel := range cancels {
		cancel()
	}
	log.Info().Str("module", "app.registry").Int("sessions", len(cancels)).Msg("canceled all sessions")
}
