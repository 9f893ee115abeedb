// Package orch runs the room session protocol: every state transition of a
// connection's room participation and the broadcasts it causes.
package orch

import (
	"context"
	"time"

	"github.com/dkeye/peerchat/internal/app"
	"github.com/dkeye/peerchat/internal/core"
	"github.com/rs/zerolog/log"
)

// Orchestrator mutates the Registry and asks the Router to notify rooms.
// All transitions touching room R run under R's lock; a caller never holds
// two room locks at once.
type Orchestrator struct {
	Registry  *app.Registry
	Rooms     core.RoomManager
	Router    *core.Router
	Directory core.RoomDirectory
	Policy    app.Policy
	Now       core.Clock
}

func New(reg *app.Registry, rooms core.RoomManager, dir core.RoomDirectory, policy app.Policy) *Orchestrator {
	return &Orchestrator{
		Registry:  reg,
		Rooms:     rooms,
		Router:    core.NewRouter(reg),
		Directory: dir,
		Policy:    policy,
		Now:       time.Now,
	}
}

// Connect registers an authenticated session. cancel must close the
// underlying connection; it is how kicks and shutdown reach it.
func (o *Orchestrator) Connect(sess core.MemberSession, cancel context.CancelFunc) error {
	return o.Registry.Register(sess, cancel)
}

// Reply sends an event to one session only.
func (o *Orchestrator) Reply(sid core.SessionID, event string, payload any) {
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return
	}
	if err := o.Router.SendTo(sess, event, payload); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("event", event).Msg("reply not delivered")
	}
}

func (o *Orchestrator) broadcastRoster(room core.RoomService) core.PublishResult {
	return o.Router.BroadcastToRoom(room.ID(), core.EventRoomUsers, core.RoomUsersPayload{
		RoomID: room.ID(),
		Users:  o.Registry.MembersOf(room.ID()),
	}, "")
}

// applyPolicy runs after the room lock is released.
func (o *Orchestrator) applyPolicy(room core.RoomService, results ...core.PublishResult) {
	if o.Policy == nil {
		return
	}
	for _, res := range results {
		for _, slow := range res.Dropped {
			switch o.Policy.OnBackPressure(room, slow) {
			case app.KickMember:
				log.Warn().Str("module", "orch").Str("sid", string(slow.ID())).Str("room", string(room.ID())).Msg("kicking slow consumer")
				o.Registry.Cancel(slow.ID())
			case app.NoAction:
			}
		}
	}
}

func (o *Orchestrator) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}
