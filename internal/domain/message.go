package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const MaxContentLen = 2000

var (
	ErrValidation     = errors.New("validation failed")
	ErrContentEmpty   = fmt.Errorf("%w: message cannot be empty", ErrValidation)
	ErrContentTooLong = fmt.Errorf("%w: message too long (max %d characters)", ErrValidation, MaxContentLen)

	ErrNotAMember  = errors.New("not in this room")
	ErrPersistence = errors.New("failed to send message")
	ErrRateLimited = errors.New("slow down")
)

type MessageID string

type Message struct {
	ID         MessageID  `json:"id"`
	Content    string     `json:"content"`
	SenderID   UserID     `json:"userId"`
	SenderName string     `json:"username"`
	RoomID     RoomID     `json:"roomId"`
	Timestamp  time.Time  `json:"timestamp"`
	Edited     bool       `json:"edited"`
	EditedAt   *time.Time `json:"editedAt,omitempty"`
}

// NewMessage validates content and stamps the sender. The id is left for the
// directory to assign.
func NewMessage(room RoomID, sender *Identity, content string, at time.Time) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrContentEmpty
	}
	if utf8.RuneCountInString(content) > MaxContentLen {
		return nil, ErrContentTooLong
	}
	return &Message{
		Content:    content,
		SenderID:   sender.ID,
		SenderName: sender.DisplayName,
		RoomID:     room,
		Timestamp:  at,
	}, nil
}
