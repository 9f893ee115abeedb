package orch

import (
	"context"
	"fmt"

	"github.com/dkeye/peerchat/internal/app"
	"github.com/dkeye/peerchat/internal/core"
	"github.com/dkeye/peerchat/internal/domain"
	"github.com/rs/zerolog/log"
)

// Join puts sid into roomID, leaving any other room first. The roster
// broadcast includes the joiner. Nothing changes when the room is unknown.
func (o *Orchestrator) Join(ctx context.Context, sid core.SessionID, roomID domain.RoomID) error {
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return app.ErrUnknownSession
	}
	info, err := o.Directory.GetRoom(ctx, roomID)
	if err != nil {
		return fmt.Errorf("join %s: %w", roomID, err)
	}

	o.leaveCurrent(sid, roomID)

	room := o.Rooms.GetOrCreate(roomID)
	room.Lock()
	room.SetInfo(info)
	if _, err := o.Registry.SetRoom(sid, roomID); err != nil {
		room.Unlock()
		return err
	}
	res := o.broadcastRoster(room)
	room.Unlock()

	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("user", string(sess.Meta().Identity.ID)).Str("room", string(roomID)).Msg("joined room")
	o.applyPolicy(room, res)
	return nil
}

// Leave takes sid out of roomID. It is a no-op when sid is not in that room.
func (o *Orchestrator) Leave(sid core.SessionID, roomID domain.RoomID) {
	for {
		cur, ok := o.Registry.RoomOf(sid)
		if !ok || cur != roomID {
			return
		}
		if o.leaveRoom(sid, cur, false) {
			return
		}
	}
}

// Disconnect is Leave of the current room plus Unregister, observed by other
// sessions as one step. Repeated calls do nothing.
func (o *Orchestrator) Disconnect(sid core.SessionID) {
	for {
		cur, ok := o.Registry.RoomOf(sid)
		if !ok {
			if _, ok := o.Registry.Unregister(sid); ok {
				log.Info().Str("module", "orch").Str("sid", string(sid)).Msg("disconnected")
			}
			return
		}
		if o.leaveRoom(sid, cur, true) {
			log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(cur)).Msg("disconnected")
			return
		}
	}
}

// leaveCurrent leaves whatever room sid is in unless it is keep.
func (o *Orchestrator) leaveCurrent(sid core.SessionID, keep domain.RoomID) {
	for {
		cur, ok := o.Registry.RoomOf(sid)
		if !ok || cur == keep {
			return
		}
		if o.leaveRoom(sid, cur, false) {
			return
		}
	}
}

// leaveRoom locks roomID and removes sid from it. It reports false when sid
// moved away before the lock was taken, so the caller can look again.
func (o *Orchestrator) leaveRoom(sid core.SessionID, roomID domain.RoomID, unregister bool) bool {
	room := o.Rooms.GetOrCreate(roomID)
	room.Lock()
	if cur, ok := o.Registry.RoomOf(sid); !ok || cur != roomID {
		room.Unlock()
		return false
	}
	sess, _ := o.Registry.GetSession(sid)

	if unregister {
		o.Registry.Unregister(sid)
	} else if _, err := o.Registry.SetRoom(sid, ""); err != nil {
		room.Unlock()
		return true
	}
	results := []core.PublishResult{o.broadcastRoster(room)}

	identity := sess.Meta().Identity
	if room.SetTyping(identity.ID, false) {
		results = append(results, o.Router.BroadcastToRoom(roomID, core.EventUserStopTyping, core.NewTypingPayload(identity), sid))
	}
	room.Unlock()

	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("user", string(identity.ID)).Str("room", string(roomID)).Msg("left room")
	o.applyPolicy(room, results...)
	return true
}
