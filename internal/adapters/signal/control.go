package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkeye/peerchat/internal/core"
)

func (ctl *SignalWSController) handlePing(_ context.Context, sid core.SessionID, _ json.RawMessage) error {
	ctl.Orch.Reply(sid, core.EventPong, core.PongPayload{Timestamp: time.Now()})
	return nil
}

func (ctl *SignalWSController) handleWhoAmI(_ context.Context, sid core.SessionID, _ json.RawMessage) error {
	sess, ok := ctl.Orch.Registry.GetSession(sid)
	if !ok {
		return nil
	}
	id := sess.Meta().Identity
	resp := core.IdentityPayload{UserID: id.ID, Username: id.DisplayName}
	if roomID, ok := ctl.Orch.Registry.RoomOf(sid); ok {
		resp.RoomID = roomID
	}
	ctl.Orch.Reply(sid, core.EventIdentity, resp)
	return nil
}
