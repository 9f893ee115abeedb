package core

import (
	"github.com/dkeye/peerchat/internal/domain"
	"github.com/rs/zerolog/log"
)

// MemberLister yields the live sessions currently in a room.
type MemberLister interface {
	SessionsIn(room domain.RoomID) []MemberSession
}

// Router fans events out to the sessions of one room.
// Delivery is a non-blocking enqueue per recipient; a recipient that cannot
// take the frame is reported in PublishResult.Dropped and skipped. Callers
// submit a room's events under that room's lock, so every recipient queues
// them in the same order.
type Router struct {
	members MemberLister
}

func NewRouter(members MemberLister) *Router {
	return &Router{members: members}
}

// BroadcastToRoom delivers event to every session in room except exclude
// (pass "" to exclude nobody).
func (r *Router) BroadcastToRoom(room domain.RoomID, event string, payload any, exclude SessionID) PublishResult {
	res := PublishResult{}
	frame, err := Encode(event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "core.router").Str("event", event).Msg("encode broadcast")
		return res
	}
	for _, m := range r.members.SessionsIn(room) {
		if m.ID() == exclude {
			continue
		}
		if err := m.Signal().TrySend(frame); err != nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		res.SendTo++
	}
	log.Debug().
		Str("module", "core.router").
		Str("room", string(room)).
		Str("event", event).
		Int("sent_to", res.SendTo).
		Int("dropped", len(res.Dropped)).
		Msg("broadcast result")
	return res
}

// SendTo delivers one event to a single session.
func (r *Router) SendTo(m MemberSession, event string, payload any) error {
	frame, err := Encode(event, payload)
	if err != nil {
		return err
	}
	return m.Signal().TrySend(frame)
}
