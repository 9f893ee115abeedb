package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/peerchat/internal/app/orch"
	"github.com/dkeye/peerchat/internal/core"
	"github.com/dkeye/peerchat/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("connection closed")
)

type Options struct {
	ReadLimit  int64
	PingPeriod time.Duration
	PongWait   time.Duration
	WriteWait  time.Duration
	SendBuffer int
	// FloodLimit caps inbound events per identity per FloodInterval; 0 is off.
	FloodLimit    int
	FloodInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.ReadLimit <= 0 {
		o.ReadLimit = 32768
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.PingPeriod <= 0 || o.PingPeriod >= o.PongWait {
		o.PingPeriod = o.PongWait * 9 / 10
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 5 * time.Second
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 32
	}
	return o
}

type SignalWSController struct {
	Orch *orch.Orchestrator

	opts     Options
	flood    *core.RateLimiter
	handlers map[string]handlerFunc
	upgrader websocket.Upgrader
}

func NewSignalWSController(o *orch.Orchestrator, opts Options) *SignalWSController {
	opts = opts.withDefaults()
	ctl := &SignalWSController{
		Orch: o,
		opts: opts,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	if opts.FloodLimit > 0 && opts.FloodInterval > 0 {
		ctl.flood = core.NewRateLimiter(opts.FloodLimit, opts.FloodInterval)
	}
	ctl.handlers = map[string]handlerFunc{
		core.EventJoinRoom:    ctl.handleJoin,
		core.EventLeaveRoom:   ctl.handleLeave,
		core.EventSendMessage: ctl.handleSend,
		core.EventTyping:      ctl.handleTyping,
		core.EventStopTyping:  ctl.handleStopTyping,
		core.EventPing:        ctl.handlePing,
		core.EventWhoAmI:      ctl.handleWhoAmI,
	}
	return ctl
}

// WsSignalConn is the outbound side of one socket: a bounded FIFO drained by
// a single writer goroutine.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(ws *websocket.Conn, buffer int) *WsSignalConn {
	return &WsSignalConn{conn: ws, send: make(chan core.Frame, buffer)}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// HandleSignal upgrades an already authenticated request and runs the
// connection until it closes. Disconnect cleanup runs exactly once, from the
// read pump.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context, identity *domain.Identity) {
	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	sid := core.SessionID(uuid.NewString())
	conn := newWsSignalConn(ws, ctl.opts.SendBuffer)
	sess := core.NewMemberSession(sid, domain.NewMember(identity), conn)

	ctx, cancel := context.WithCancel(ctx)
	kill := func() {
		cancel()
		conn.Close()
	}
	if err := ctl.Orch.Connect(sess, kill); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("register session")
		kill()
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("user", string(identity.ID)).Msg("new WS connection")

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sess, conn, kill)
}
