package core

import (
	"context"
	"errors"

	"github.com/dkeye/peerchat/internal/domain"
)

var ErrAccountNotFound = errors.New("account not found")

// RoomDirectory is the persistent store of rooms and their history.
// GetRoom returns domain.ErrRoomNotFound for unknown or inactive rooms.
type RoomDirectory interface {
	GetRoom(ctx context.Context, id domain.RoomID) (*domain.Room, error)
	// AppendMessage stores msg and returns it with its assigned id.
	AppendMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error)
	UpdateRoomActivity(ctx context.Context, id domain.RoomID, act domain.RoomActivity) error

	ListRooms(ctx context.Context) ([]*domain.Room, error)
	// RoomMessages returns history in ascending timestamp order.
	RoomMessages(ctx context.Context, id domain.RoomID, limit, offset int) ([]*domain.Message, error)
}

type AccountStore interface {
	FindAccount(ctx context.Context, id domain.UserID) (*domain.Account, error)
}

// IdentityVerifier turns a bearer credential into an identity or rejects it.
type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (*domain.Identity, error)
}
