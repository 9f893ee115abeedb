package core

import (
	"encoding/json"
	"time"

	"github.com/dkeye/peerchat/internal/domain"
)

// Client to server events.
const (
	EventJoinRoom    = "join-room"
	EventLeaveRoom   = "leave-room"
	EventSendMessage = "send-message"
	EventTyping      = "typing"
	EventStopTyping  = "stop-typing"
	EventPing        = "ping"
	EventWhoAmI      = "whoami"
)

// Server to client events.
const (
	EventRoomUsers      = "room-users"
	EventMessage        = "message"
	EventUserTyping     = "user-typing"
	EventUserStopTyping = "user-stop-typing"
	EventError          = "error"
	EventPong           = "pong"
	EventIdentity       = "identity"
)

// Envelope is the wire shape of every event in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func Encode(event string, payload any) (Frame, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

type RoomRequest struct {
	RoomID domain.RoomID `json:"roomId"`
}

type SendMessageRequest struct {
	RoomID  domain.RoomID `json:"roomId"`
	Content string        `json:"content"`
}

// RoomUsersPayload is a full roster snapshot, never a diff.
type RoomUsersPayload struct {
	RoomID domain.RoomID `json:"roomId"`
	Users  []string      `json:"users"`
}

type MessagePayload struct {
	ID        domain.MessageID `json:"id"`
	Content   string           `json:"content"`
	UserID    domain.UserID    `json:"userId"`
	Username  string           `json:"username"`
	Timestamp time.Time        `json:"timestamp"`
}

func NewMessagePayload(m *domain.Message) MessagePayload {
	return MessagePayload{
		ID:        m.ID,
		Content:   m.Content,
		UserID:    m.SenderID,
		Username:  m.SenderName,
		Timestamp: m.Timestamp,
	}
}

type TypingPayload struct {
	UserID   domain.UserID `json:"userId"`
	Username string        `json:"username"`
}

func NewTypingPayload(id *domain.Identity) TypingPayload {
	return TypingPayload{UserID: id.ID, Username: id.DisplayName}
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type PongPayload struct {
	Timestamp time.Time `json:"timestamp"`
}

// IdentityPayload answers whoami.
type IdentityPayload struct {
	UserID   domain.UserID `json:"userId"`
	Username string        `json:"username"`
	RoomID   domain.RoomID `json:"roomId,omitempty"`
}
