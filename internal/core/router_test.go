package core_test

import (
	"testing"

	"github.com/dkeye/peerchat/internal/core"
	"github.com/dkeye/peerchat/internal/core/coretest"
	"github.com/dkeye/peerchat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticMembers map[domain.RoomID][]core.MemberSession

func (s staticMembers) SessionsIn(room domain.RoomID) []core.MemberSession { return s[room] }

func TestRouter_BroadcastToRoom(t *testing.T) {
	alice, aliceConn := coretest.NewSession("s1", "u1", "alice")
	bob, bobConn := coretest.NewSession("s2", "u2", "bob")
	carol, carolConn := coretest.NewSession("s3", "u3", "carol")

	router := core.NewRouter(staticMembers{
		"general": {alice, bob},
		"other":   {carol},
	})

	res := router.BroadcastToRoom("general", core.EventUserTyping, core.TypingPayload{UserID: "u1", Username: "alice"}, "s1")
	assert.Equal(t, 1, res.SendTo)
	assert.Empty(t, res.Dropped)

	assert.Empty(t, aliceConn.Events(t), "excluded sender must not be notified")
	require.Len(t, bobConn.Named(t, core.EventUserTyping), 1)
	assert.Empty(t, carolConn.Events(t), "other room must not see the event")

	got := coretest.Decode[core.TypingPayload](t, bobConn.Named(t, core.EventUserTyping)[0])
	assert.Equal(t, domain.UserID("u1"), got.UserID)
	assert.Equal(t, "alice", got.Username)
}

func TestRouter_IsolatesFailedRecipient(t *testing.T) {
	alice, aliceConn := coretest.NewSession("s1", "u1", "alice")
	bob, bobConn := coretest.NewSession("s2", "u2", "bob")
	carol, carolConn := coretest.NewSession("s3", "u3", "carol")
	bobConn.SetFull(true)

	router := core.NewRouter(staticMembers{"general": {alice, bob, carol}})

	res := router.BroadcastToRoom("general", core.EventRoomUsers, core.RoomUsersPayload{RoomID: "general"}, "")
	assert.Equal(t, 2, res.SendTo)
	require.Len(t, res.Dropped, 1)
	assert.Equal(t, core.SessionID("s2"), res.Dropped[0].ID())

	assert.Len(t, aliceConn.Events(t), 1)
	assert.Len(t, carolConn.Events(t), 1)
}

func TestRouter_PreservesSubmissionOrder(t *testing.T) {
	alice, aliceConn := coretest.NewSession("s1", "u1", "alice")
	bob, bobConn := coretest.NewSession("s2", "u2", "bob")
	router := core.NewRouter(staticMembers{"general": {alice, bob}})

	for _, id := range []domain.MessageID{"m1", "m2", "m3"} {
		router.BroadcastToRoom("general", core.EventMessage, core.MessagePayload{ID: id}, "")
	}

	for _, conn := range []*coretest.Conn{aliceConn, bobConn} {
		events := conn.Named(t, core.EventMessage)
		require.Len(t, events, 3)
		var ids []domain.MessageID
		for _, env := range events {
			ids = append(ids, coretest.Decode[core.MessagePayload](t, env).ID)
		}
		assert.Equal(t, []domain.MessageID{"m1", "m2", "m3"}, ids)
	}
}

func TestRouter_SendTo(t *testing.T) {
	alice, aliceConn := coretest.NewSession("s1", "u1", "alice")
	router := core.NewRouter(staticMembers{})

	require.NoError(t, router.SendTo(alice, core.EventError, core.ErrorPayload{Message: "Room not found"}))
	events := aliceConn.Named(t, core.EventError)
	require.Len(t, events, 1)
	assert.Equal(t, "Room not found", coretest.Decode[core.ErrorPayload](t, events[0]).Message)
}
