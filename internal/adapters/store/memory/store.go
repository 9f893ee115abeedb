// Package memory is a process-local Room Directory and account store.
package memory

import (
	"context"
	"crypto/rand"
	"sort"
	"sync"

	"github.com/dkeye/peerchat/internal/core"
	"github.com/dkeye/peerchat/internal/domain"
	"github.com/oklog/ulid/v2"
)

var (
	_ core.RoomDirectory = (*Store)(nil)
	_ core.AccountStore  = (*Store)(nil)
)

type Store struct {
	mu       sync.RWMutex
	rooms    map[domain.RoomID]*domain.Room
	messages map[domain.RoomID][]*domain.Message
	accounts map[domain.UserID]*domain.Account
	entropy  *ulid.MonotonicEntropy
}

func New() *Store {
	return &Store{
		rooms:    make(map[domain.RoomID]*domain.Room),
		messages: make(map[domain.RoomID][]*domain.Message),
		accounts: make(map[domain.UserID]*domain.Account),
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
}

// PutRoom inserts or replaces a room.
func (s *Store) PutRoom(room *domain.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *room
	s.rooms[room.ID] = &cp
}

func (s *Store) PutAccount(acc *domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *acc
	s.accounts[acc.ID] = &cp
}

func (s *Store) GetRoom(_ context.Context, id domain.RoomID) (*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok || !room.IsActive {
		return nil, domain.ErrRoomNotFound
	}
	cp := *room
	return &cp, nil
}

func (s *Store) AppendMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[msg.RoomID]; !ok {
		return nil, domain.ErrRoomNotFound
	}
	stored := *msg
	stored.ID = domain.MessageID(ulid.MustNew(ulid.Timestamp(msg.Timestamp), s.entropy).String())
	s.messages[msg.RoomID] = append(s.messages[msg.RoomID], &stored)
	out := stored
	return &out, nil
}

func (s *Store) UpdateRoomActivity(_ context.Context, id domain.RoomID, act domain.RoomActivity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return domain.ErrRoomNotFound
	}
	room.LastMessage = act.LastMessage
	room.LastActivity = act.LastActivity
	return nil
}

// ListRooms returns active public rooms, most recently active first.
func (s *Store) ListRooms(_ context.Context) ([]*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		if !room.IsActive || !room.IsPublic {
			continue
		}
		cp := *room
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastActivity.Equal(out[j].LastActivity) {
			return out[i].ID < out[j].ID
		}
		return out[i].LastActivity.After(out[j].LastActivity)
	})
	return out, nil
}

// RoomMessages pages from the newest message backwards and returns the page
// oldest first.
func (s *Store) RoomMessages(_ context.Context, id domain.RoomID, limit, offset int) ([]*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok || !room.IsActive {
		return nil, domain.ErrRoomNotFound
	}
	all := s.messages[id]
	end := len(all) - offset
	if end <= 0 || limit <= 0 {
		return []*domain.Message{}, nil
	}
	start := max(end-limit, 0)
	out := make([]*domain.Message, 0, end-start)
	for _, m := range all[start:end] {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Store) FindAccount(_ context.Context, id domain.UserID) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[id]
	if !ok {
		return nil, core.ErrAccountNotFound
	}
	cp := *acc
	return &cp, nil
}
