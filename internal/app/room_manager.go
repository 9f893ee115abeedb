package app

import (
	"sync"

	"github.com/dkeye/peerchat/internal/core"
	"github.com/dkeye/peerchat/internal/domain"
)

// RoomManagerImpl hands out one RoomService per room id for the life of the
// process. Rooms are never dropped, so two callers can never end up holding
// different locks for the same room.
type RoomManagerImpl struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]core.RoomService
}

func NewRoomManager() core.RoomManager {
	return &RoomManagerImpl{rooms: make(map[domain.RoomID]core.RoomService)}
}

func (f *RoomManagerImpl) GetOrCreate(id domain.RoomID) core.RoomService {
	f.mu.RLock()
	room, ok := f.rooms[id]
	f.mu.RUnlock()
	if ok {
		return room
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if room, ok = f.rooms[id]; ok {
		return room
	}
	room = core.NewRoomService(id)
	f.rooms[id] = room
	return room
}

func (f *RoomManagerImpl) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.rooms)
}
