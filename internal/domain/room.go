package domain

import (
	"errors"
	"time"
)

var ErrRoomNotFound = errors.New("room not found")

type RoomID string

// RoomSettings mirrors the per-room knobs kept by the directory.
type RoomSettings struct {
	// SlowMode is the minimum time between two messages of one identity.
	SlowMode time.Duration `json:"slowMode"`
}

type Room struct {
	ID           RoomID       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Category     string       `json:"category"`
	IsPublic     bool         `json:"isPublic"`
	IsActive     bool         `json:"-"`
	MaxMembers   int          `json:"maxMembers"`
	Members      []UserID     `json:"-"`
	Tags         []string     `json:"tags,omitempty"`
	Rules        []string     `json:"rules,omitempty"`
	LastMessage  string       `json:"lastMessage"`
	LastActivity time.Time    `json:"lastActivity"`
	Settings     RoomSettings `json:"settings"`
}

// RoomActivity is the denormalized "last message" summary of a room.
type RoomActivity struct {
	LastMessage  string
	LastActivity time.Time
}

const lastMessagePreviewLen = 100

// ActivityFor builds the summary a stored message leaves on its room.
func ActivityFor(m *Message) RoomActivity {
	preview := []rune(m.Content)
	if len(preview) > lastMessagePreviewLen {
		preview = preview[:lastMessagePreviewLen]
	}
	return RoomActivity{LastMessage: string(preview), LastActivity: m.Timestamp}
}
