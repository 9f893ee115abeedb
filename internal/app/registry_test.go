package app

import (
	"testing"

	"github.com/dkeye/peerchat/internal/core"
	"github.com/dkeye/peerchat/internal/core/coretest"
	"github.com/dkeye/peerchat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, r *Registry, sid core.SessionID, uid domain.UserID, name string) *int {
	t.Helper()
	sess, _ := coretest.NewSession(sid, uid, name)
	calls := new(int)
	require.NoError(t, r.Register(sess, func() { *calls++ }))
	return calls
}

func TestRegistry_RegisterTwice(t *testing.T) {
	r := NewRegistry()
	register(t, r, "s1", "u1", "alice")
	sess, _ := coretest.NewSession("s1", "u1", "alice")
	assert.ErrorIs(t, r.Register(sess, nil), ErrSessionExists)
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_SetRoomKeepsIndexesInSync(t *testing.T) {
	r := NewRegistry()
	register(t, r, "s1", "u1", "alice")
	register(t, r, "s2", "u2", "bob")

	prev, err := r.SetRoom("s1", "general")
	require.NoError(t, err)
	assert.Empty(t, prev)
	_, err = r.SetRoom("s2", "general")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, r.MembersOf("general"))
	assert.Len(t, r.SessionsIn("general"), 2)

	prev, err = r.SetRoom("s1", "other")
	require.NoError(t, err)
	assert.Equal(t, domain.RoomID("general"), prev)
	assert.Equal(t, []string{"bob"}, r.MembersOf("general"))
	assert.Equal(t, []string{"alice"}, r.MembersOf("other"))

	room, ok := r.RoomOf("s1")
	require.True(t, ok)
	assert.Equal(t, domain.RoomID("other"), room)

	_, err = r.SetRoom("s1", "")
	require.NoError(t, err)
	_, ok = r.RoomOf("s1")
	assert.False(t, ok)
	assert.Empty(t, r.MembersOf("other"))
	assert.Nil(t, r.SessionsIn("other"))

	_, err = r.SetRoom("ghost", "general")
	assert.ErrorIs(t, err, ErrUnknownSession)
}

func TestRegistry_CountsSessionsPerIdentity(t *testing.T) {
	r := NewRegistry()
	register(t, r, "tab1", "u1", "alice")
	register(t, r, "tab2", "u1", "alice")
	register(t, r, "s3", "u2", "bob")
	for _, sid := range []core.SessionID{"tab1", "tab2", "s3"} {
		_, err := r.SetRoom(sid, "general")
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"alice", "bob"}, r.MembersOf("general"))
	assert.Equal(t, 2, r.PresenceCount("general"))
	assert.Len(t, r.SessionsIn("general"), 3)

	room, ok := r.Unregister("tab1")
	require.True(t, ok)
	assert.Equal(t, domain.RoomID("general"), room)
	assert.True(t, r.HasIdentity("general", "u1"))
	assert.Equal(t, []string{"alice", "bob"}, r.MembersOf("general"))

	_, err := r.SetRoom("tab2", "")
	require.NoError(t, err)
	assert.False(t, r.HasIdentity("general", "u1"))
	assert.Equal(t, []string{"bob"}, r.MembersOf("general"))
	assert.Equal(t, 1, r.PresenceCount("general"))
}

func TestRegistry_UnregisterIsIdempotent(t *testing.T) {
	r := NewRegistry()
	register(t, r, "s1", "u1", "alice")
	_, err := r.SetRoom("s1", "general")
	require.NoError(t, err)

	room, ok := r.Unregister("s1")
	assert.True(t, ok)
	assert.Equal(t, domain.RoomID("general"), room)

	_, ok = r.Unregister("s1")
	assert.False(t, ok)
	assert.Zero(t, r.Count())
	assert.Empty(t, r.MembersOf("general"))
	_, ok = r.GetSession("s1")
	assert.False(t, ok)
}

func TestRegistry_Cancel(t *testing.T) {
	r := NewRegistry()
	c1 := register(t, r, "s1", "u1", "alice")
	c2 := register(t, r, "s2", "u2", "bob")

	assert.True(t, r.Cancel("s1"))
	assert.False(t, r.Cancel("ghost"))
	assert.Equal(t, 1, *c1)
	assert.Zero(t, *c2)

	r.CancelAll()
	assert.Equal(t, 2, *c1)
	assert.Equal(t, 1, *c2)
	assert.Equal(t, 2, r.Count(), "cancel leaves cleanup to the connection")
}

func TestRoomManager_GetOrCreate(t *testing.T) {
	m := NewRoomManager()
	a := m.GetOrCreate("general")
	assert.Same(t, a, m.GetOrCreate("general"))
	assert.NotSame(t, a, m.GetOrCreate("other"))
	assert.Equal(t, 2, m.Count())
}

func TestSimplePolicy(t *testing.T) {
	sess, _ := coretest.NewSession("s1", "u1", "alice")
	room := NewRoomManager().GetOrCreate("general")
	assert.Equal(t, KickMember, SimplePolicy{}.OnBackPressure(room, sess))
	assert.Equal(t, NoAction, TolerantPolicy{}.OnBackPressure(room, sess))
}
