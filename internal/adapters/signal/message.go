package signal

import (
	"context"
	"encoding/json"

	"github.com/dkeye/peerchat/internal/core"
)

func (ctl *SignalWSController) handleSend(ctx context.Context, sid core.SessionID, data json.RawMessage) error {
	p, err := decode[core.SendMessageRequest](data)
	if err != nil {
		return err
	}
	_, err = ctl.Orch.Send(ctx, sid, p.RoomID, p.Content)
	return err
}

func (ctl *SignalWSController) handleTyping(_ context.Context, sid core.SessionID, data json.RawMessage) error {
	p, err := decode[core.RoomRequest](data)
	if err != nil {
		return err
	}
	return ctl.Orch.Typing(sid, p.RoomID)
}

func (ctl *SignalWSController) handleStopTyping(_ context.Context, sid core.SessionID, data json.RawMessage) error {
	p, err := decode[core.RoomRequest](data)
	if err != nil {
		return err
	}
	return ctl.Orch.StopTyping(sid, p.RoomID)
}
