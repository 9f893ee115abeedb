package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	sender := &Identity{ID: "u1", DisplayName: "alice"}
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name    string
		content string
		want    string
		wantErr error
	}{
		{name: "plain", content: "hi", want: "hi"},
		{name: "trimmed", content: "  hello there \n", want: "hello there"},
		{name: "whitespace only", content: "   ", wantErr: ErrContentEmpty},
		{name: "empty", content: "", wantErr: ErrContentEmpty},
		{name: "exactly max", content: strings.Repeat("a", MaxContentLen), want: strings.Repeat("a", MaxContentLen)},
		{name: "one over max", content: strings.Repeat("a", MaxContentLen+1), wantErr: ErrContentTooLong},
		{name: "max after trim", content: " " + strings.Repeat("b", MaxContentLen) + " ", want: strings.Repeat("b", MaxContentLen)},
		{name: "multibyte counted as characters", content: strings.Repeat("é", MaxContentLen), want: strings.Repeat("é", MaxContentLen)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage("general", sender, tt.content, at)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.True(t, errors.Is(err, ErrValidation))
				assert.Nil(t, msg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, msg.Content)
			assert.Equal(t, UserID("u1"), msg.SenderID)
			assert.Equal(t, "alice", msg.SenderName)
			assert.Equal(t, RoomID("general"), msg.RoomID)
			assert.Equal(t, at, msg.Timestamp)
			assert.False(t, msg.Edited)
		})
	}
}

func TestActivityFor(t *testing.T) {
	at := time.Now()
	long := strings.Repeat("ü", 150)

	act := ActivityFor(&Message{Content: long, Timestamp: at})
	assert.Equal(t, strings.Repeat("ü", 100), act.LastMessage)
	assert.Equal(t, at, act.LastActivity)

	act = ActivityFor(&Message{Content: "short", Timestamp: at})
	assert.Equal(t, "short", act.LastMessage)
}

func TestNewIdentity(t *testing.T) {
	id, err := NewIdentity("u1", "  bob ")
	require.NoError(t, err)
	assert.Equal(t, "bob", id.DisplayName)

	_, err = NewIdentity("", "bob")
	assert.ErrorIs(t, err, ErrUserIDEmpty)

	_, err = NewIdentity("u1", " ")
	assert.ErrorIs(t, err, ErrDisplayNameEmpty)

	_, err = NewIdentity("u1", strings.Repeat("x", MaxDisplayNameLen+1))
	assert.ErrorIs(t, err, ErrDisplayNameTooLong)
}
