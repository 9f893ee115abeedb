package signal

import (
	"context"
	"encoding/json"

	"github.com/dkeye/peerchat/internal/core"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleJoin(ctx context.Context, sid core.SessionID, data json.RawMessage) error {
	p, err := decode[core.RoomRequest](data)
	if err != nil {
		return err
	}
	if p.RoomID == "" {
		return errBadPayload
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(p.RoomID)).Msg("join")
	return ctl.Orch.Join(ctx, sid, p.RoomID)
}

// handleLeave leaves the room; the connection stays open.
func (ctl *SignalWSController) handleLeave(_ context.Context, sid core.SessionID, data json.RawMessage) error {
	p, err := decode[core.RoomRequest](data)
	if err != nil {
		return err
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(p.RoomID)).Msg("leave")
	ctl.Orch.Leave(sid, p.RoomID)
	return nil
}
