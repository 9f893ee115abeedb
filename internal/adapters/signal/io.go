package signal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/peerchat/internal/core"
	"github.com/dkeye/peerchat/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type handlerFunc func(ctx context.Context, sid core.SessionID, data json.RawMessage) error

var (
	errBadPayload   = errors.New("invalid payload")
	errUnknownEvent = errors.New("unknown event")
)

// errorMessages maps protocol errors to what the requester is told.
var errorMessages = []struct {
	err error
	msg string
}{
	{domain.ErrRoomNotFound, "Room not found"},
	{domain.ErrNotAMember, "You are not in this room"},
	{domain.ErrContentEmpty, "Message cannot be empty"},
	{domain.ErrContentTooLong, fmt.Sprintf("Message too long (max %d characters)", domain.MaxContentLen)},
	{domain.ErrRateLimited, "You are sending messages too fast"},
	{domain.ErrPersistence, "Failed to send message"},
	{errBadPayload, "Invalid payload"},
	{errUnknownEvent, "Unknown event"},
}

func errorMessage(err error) string {
	for _, m := range errorMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return "Request failed"
}

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(ctl.opts.WriteWait))
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, sess core.MemberSession, c *WsSignalConn, kill func()) {
	sid := sess.ID()
	defer func() {
		ctl.Orch.Disconnect(sid)
		kill()
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
	}()

	ws := c.conn
	ws.SetReadLimit(ctl.opts.ReadLimit)
	extend := func() error { return ws.SetReadDeadline(time.Now().Add(ctl.opts.PongWait)) }
	_ = extend()
	ws.SetPongHandler(func(string) error { return extend() })

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
			}
			return
		}
		_ = extend()
		ctl.dispatch(ctx, sess, data)
	}
}

// dispatch handles one inbound frame; connection events are handled one at a
// time in arrival order.
func (ctl *SignalWSController) dispatch(ctx context.Context, sess core.MemberSession, data []byte) {
	sid := sess.ID()
	var env core.Envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Event == "" {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("bad envelope")
		ctl.sendError(sid, errBadPayload)
		return
	}
	h, ok := ctl.handlers[env.Event]
	if !ok {
		log.Warn().Str("module", "signal").Str("event", env.Event).Msg("unknown signal")
		ctl.sendError(sid, errUnknownEvent)
		return
	}
	if ctl.flood != nil && !ctl.flood.Allow(sess.Meta().Identity.ID) {
		ctl.sendError(sid, domain.ErrRateLimited)
		return
	}
	if err := h(ctx, sid, env.Data); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("event", env.Event).Msg("request rejected")
		ctl.sendError(sid, err)
	}
}

func (ctl *SignalWSController) sendError(sid core.SessionID, err error) {
	ctl.Orch.Reply(sid, core.EventError, core.ErrorPayload{Message: errorMessage(err)})
}

func decode[T any](data json.RawMessage) (T, error) {
	var v T
	if len(data) == 0 {
		return v, errBadPayload
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("%w: %v", errBadPayload, err)
	}
	return v, nil
}
