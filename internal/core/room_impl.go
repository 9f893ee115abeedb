package core

import (
	"sync"

	"github.com/dkeye/peerchat/internal/domain"
	"github.com/rs/zerolog/log"
)

// roomImpl is the writer lock and ephemeral state of one room.
// It never closes adapter-owned resources.
type roomImpl struct {
	sync.Mutex

	id       domain.RoomID
	info     *domain.Room
	typing   map[domain.UserID]struct{}
	slowMode *RateLimiter
}

func NewRoomService(id domain.RoomID) RoomService {
	return &roomImpl{
		id:     id,
		typing: make(map[domain.UserID]struct{}),
	}
}

func (r *roomImpl) ID() domain.RoomID  { return r.id }
func (r *roomImpl) Info() *domain.Room { return r.info }

func (r *roomImpl) SetInfo(info *domain.Room) {
	prev := r.info
	r.info = info
	if info == nil || info.Settings.SlowMode <= 0 {
		r.slowMode = nil
		return
	}
	if prev == nil || r.slowMode == nil || prev.Settings.SlowMode != info.Settings.SlowMode {
		r.slowMode = NewRateLimiter(1, info.Settings.SlowMode)
		log.Debug().Str("module", "core.room").Str("room", string(r.id)).Dur("slow_mode", info.Settings.SlowMode).Msg("slow mode armed")
	}
}

func (r *roomImpl) SetTyping(uid domain.UserID, typing bool) bool {
	_, was := r.typing[uid]
	if typing {
		r.typing[uid] = struct{}{}
	} else {
		delete(r.typing, uid)
	}
	return was
}

func (r *roomImpl) AllowMessage(uid domain.UserID) bool {
	if r.slowMode == nil {
		return true
	}
	return r.slowMode.Allow(uid)
}
