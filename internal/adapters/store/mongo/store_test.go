package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/dkeye/peerchat/internal/core"
	"github.com/dkeye/peerchat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// testStore connects to CHAT_TEST_MONGO_URI and uses a throwaway database.
func testStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("CHAT_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("CHAT_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	s, err := Connect(ctx, Config{
		URI:            uri,
		Database:       fmt.Sprintf("peerchat_test_%d", time.Now().UnixNano()),
		ConnectTimeout: 3 * time.Second,
	})
	if err != nil {
		t.Skipf("mongo unreachable: %v", err)
	}
	t.Cleanup(func() {
		_ = s.db.Drop(context.Background())
		_ = s.Close(context.Background())
	})
	require.NoError(t, s.EnsureIndexes(ctx))
	return s
}

func insertUser(t *testing.T, s *Store, name string, active bool) domain.UserID {
	t.Helper()
	oid := primitive.NewObjectID()
	_, err := s.db.Collection(usersCollection).InsertOne(context.Background(), bson.M{
		"_id": oid, "username": name, "isActive": active, "password": "hash",
	})
	require.NoError(t, err)
	return domain.UserID(oid.Hex())
}

func TestStore_RoomLifecycle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.SeedRooms(ctx, []*domain.Room{
		{Name: "General Support", Category: "support", IsPublic: true},
		{Name: "Hidden", Category: "general", IsPublic: false},
	}))
	rooms, err := s.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	general := rooms[0]
	assert.Equal(t, "General Support", general.Name)
	assert.Equal(t, 100, general.MaxMembers)

	got, err := s.GetRoom(ctx, general.ID)
	require.NoError(t, err)
	assert.Equal(t, general.Name, got.Name)

	_, err = s.GetRoom(ctx, "not-an-object-id")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	_, err = s.GetRoom(ctx, domain.RoomID(primitive.NewObjectID().Hex()))
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)

	alice := insertUser(t, s, "alice", true)
	sender := &domain.Identity{ID: alice, DisplayName: "alice"}
	base := time.Now().UTC().Truncate(time.Millisecond)
	for i := range 3 {
		msg, err := domain.NewMessage(general.ID, sender, fmt.Sprintf("m%d", i), base.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
		stored, err := s.AppendMessage(ctx, msg)
		require.NoError(t, err)
		assert.NotEmpty(t, stored.ID)
		require.NoError(t, s.UpdateRoomActivity(ctx, general.ID, domain.ActivityFor(stored)))
	}

	history, err := s.RoomMessages(ctx, general.ID, 2, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "m1", history[0].Content)
	assert.Equal(t, "m2", history[1].Content)
	assert.Equal(t, "alice", history[1].SenderName)

	got, err = s.GetRoom(ctx, general.ID)
	require.NoError(t, err)
	assert.Equal(t, "m2", got.LastMessage)
}

func TestStore_FindAccount(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	id := insertUser(t, s, "bob", false)
	acc, err := s.FindAccount(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "bob", acc.DisplayName)
	assert.False(t, acc.Active)

	_, err = s.FindAccount(ctx, domain.UserID(primitive.NewObjectID().Hex()))
	assert.ErrorIs(t, err, core.ErrAccountNotFound)
	_, err = s.FindAccount(ctx, "garbage")
	assert.ErrorIs(t, err, core.ErrAccountNotFound)
}
