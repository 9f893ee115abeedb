package core

import (
	"testing"
	"time"

	"github.com/dkeye/peerchat/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("u1"))
	assert.True(t, rl.Allow("u1"))
	assert.False(t, rl.Allow("u1"), "third attempt inside the window")
	assert.True(t, rl.Allow("u2"), "identities are limited independently")

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("u1"), "window slid past the old attempts")

	rl.Forget("u1")
	assert.True(t, rl.Allow("u1"))
}

func TestRoomService_SlowMode(t *testing.T) {
	room := NewRoomService("general")
	room.Lock()
	defer room.Unlock()

	assert.True(t, room.AllowMessage("u1"))
	assert.True(t, room.AllowMessage("u1"), "no slow mode without settings")

	room.SetInfo(&domain.Room{ID: "general", Settings: domain.RoomSettings{SlowMode: time.Hour}})
	assert.True(t, room.AllowMessage("u1"))
	assert.False(t, room.AllowMessage("u1"))
	assert.True(t, room.AllowMessage("u2"))

	room.SetInfo(&domain.Room{ID: "general"})
	assert.True(t, room.AllowMessage("u1"), "slow mode lifted")
}

func TestRoomService_Typing(t *testing.T) {
	room := NewRoomService("general")

	assert.False(t, room.SetTyping("u1", false), "stop without start is harmless")
	assert.False(t, room.SetTyping("u1", true))
	assert.True(t, room.SetTyping("u1", true), "repeated start is idempotent")
	assert.True(t, room.SetTyping("u1", false))
	assert.False(t, room.SetTyping("u1", false))
}
