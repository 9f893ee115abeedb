package orch

import (
	"context"
	"fmt"

	"github.com/dkeye/peerchat/internal/core"
	"github.com/dkeye/peerchat/internal/domain"
	"github.com/rs/zerolog/log"
)

// Send stores a message and broadcasts it to every member of roomID, sender
// included. A message that cannot be stored is never broadcast.
func (o *Orchestrator) Send(ctx context.Context, sid core.SessionID, roomID domain.RoomID, content string) (*domain.Message, error) {
	cur, ok := o.Registry.RoomOf(sid)
	if !ok || cur != roomID {
		return nil, domain.ErrNotAMember
	}
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return nil, domain.ErrNotAMember
	}
	identity := sess.Meta().Identity

	room := o.Rooms.GetOrCreate(roomID)
	room.Lock()
	if cur, ok := o.Registry.RoomOf(sid); !ok || cur != roomID {
		room.Unlock()
		return nil, domain.ErrNotAMember
	}
	msg, err := domain.NewMessage(roomID, identity, content, o.now())
	if err != nil {
		room.Unlock()
		return nil, err
	}
	if !room.AllowMessage(identity.ID) {
		room.Unlock()
		return nil, domain.ErrRateLimited
	}
	stored, err := o.Directory.AppendMessage(ctx, msg)
	if err != nil {
		room.Unlock()
		log.Error().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("room", string(roomID)).Msg("append message")
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	res := o.Router.BroadcastToRoom(roomID, core.EventMessage, core.NewMessagePayload(stored), "")
	if err := o.Directory.UpdateRoomActivity(ctx, roomID, domain.ActivityFor(stored)); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("room", string(roomID)).Msg("update room activity")
	}
	room.Unlock()

	log.Debug().Str("module", "orch").Str("sid", string(sid)).Str("room", string(roomID)).Str("message", string(stored.ID)).Msg("message sent")
	o.applyPolicy(room, res)
	return stored, nil
}

// Typing announces to the other members of roomID that sid's identity is
// typing. Repeats are harmless.
func (o *Orchestrator) Typing(sid core.SessionID, roomID domain.RoomID) error {
	return o.setTyping(sid, roomID, true)
}

// StopTyping is always broadcast, even without a prior Typing.
func (o *Orchestrator) StopTyping(sid core.SessionID, roomID domain.RoomID) error {
	return o.setTyping(sid, roomID, false)
}

func (o *Orchestrator) setTyping(sid core.SessionID, roomID domain.RoomID, typing bool) error {
	if cur, ok := o.Registry.RoomOf(sid); !ok || cur != roomID {
		return domain.ErrNotAMember
	}
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return domain.ErrNotAMember
	}
	room := o.Rooms.GetOrCreate(roomID)
	room.Lock()
	if cur, ok := o.Registry.RoomOf(sid); !ok || cur != roomID {
		room.Unlock()
		return domain.ErrNotAMember
	}
	identity := sess.Meta().Identity
	room.SetTyping(identity.ID, typing)
	event := core.EventUserStopTyping
	if typing {
		event = core.EventUserTyping
	}
	res := o.Router.BroadcastToRoom(roomID, event, core.NewTypingPayload(identity), sid)
	room.Unlock()

	o.applyPolicy(room, res)
	return nil
}
