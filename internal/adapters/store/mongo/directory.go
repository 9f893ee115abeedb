package mongo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dkeye/peerchat/internal/core"
	"github.com/dkeye/peerchat/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	_ core.RoomDirectory = (*Store)(nil)
	_ core.AccountStore  = (*Store)(nil)
)

func roomOID(id domain.RoomID) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return primitive.NilObjectID, domain.ErrRoomNotFound
	}
	return oid, nil
}

func (s *Store) GetRoom(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	oid, err := roomOID(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.op(ctx)
	defer cancel()

	var doc roomDoc
	err = s.db.Collection(roomsCollection).FindOne(ctx, bson.M{"_id": oid, "isActive": true}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find room %s: %w", id, err)
	}
	return doc.toDomain(), nil
}

func (s *Store) AppendMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	room, err := roomOID(msg.RoomID)
	if err != nil {
		return nil, err
	}
	sender, err := primitive.ObjectIDFromHex(string(msg.SenderID))
	if err != nil {
		return nil, fmt.Errorf("sender id %q: %w", msg.SenderID, err)
	}
	ctx, cancel := s.op(ctx)
	defer cancel()

	now := time.Now()
	doc := messageDoc{
		Content:   msg.Content,
		Sender:    sender,
		Room:      room,
		Timestamp: msg.Timestamp,
		Type:      "text",
		CreatedAt: now,
		UpdatedAt: now,
	}
	res, err := s.db.Collection(messagesCollection).InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	stored := *msg
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		stored.ID = domain.MessageID(oid.Hex())
	}
	return &stored, nil
}

func (s *Store) UpdateRoomActivity(ctx context.Context, id domain.RoomID, act domain.RoomActivity) error {
	oid, err := roomOID(id)
	if err != nil {
		return err
	}
	ctx, cancel := s.op(ctx)
	defer cancel()

	res, err := s.db.Collection(roomsCollection).UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"lastMessage":  act.LastMessage,
		"lastActivity": act.LastActivity,
	}})
	if err != nil {
		return fmt.Errorf("update room activity %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

func (s *Store) ListRooms(ctx context.Context) ([]*domain.Room, error) {
	ctx, cancel := s.op(ctx)
	defer cancel()

	cur, err := s.db.Collection(roomsCollection).Find(ctx,
		bson.M{"isPublic": true, "isActive": true},
		options.Find().SetSort(bson.D{{Key: "lastActivity", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	var docs []roomDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode rooms: %w", err)
	}
	out := make([]*domain.Room, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

// RoomMessages skips deleted messages and joins each row with its sender's
// username. The page is taken newest first and returned oldest first.
func (s *Store) RoomMessages(ctx context.Context, id domain.RoomID, limit, offset int) ([]*domain.Message, error) {
	oid, err := roomOID(id)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []*domain.Message{}, nil
	}
	ctx, cancel := s.op(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"room": oid, "isDeleted": false}}},
		{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: -1}}}},
		{{Key: "$skip", Value: int64(offset)}},
		{{Key: "$limit", Value: int64(limit)}},
		{{Key: "$lookup", Value: bson.M{
			"from":         usersCollection,
			"localField":   "sender",
			"foreignField": "_id",
			"as":           "senderDoc",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$senderDoc", "preserveNullAndEmptyArrays": true}}},
	}
	cur, err := s.db.Collection(messagesCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("room messages %s: %w", id, err)
	}
	var rows []messageView
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	out := make([]*domain.Message, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	slices.Reverse(out)
	return out, nil
}

func (s *Store) FindAccount(ctx context.Context, id domain.UserID) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return nil, core.ErrAccountNotFound
	}
	ctx, cancel := s.op(ctx)
	defer cancel()

	var doc userDoc
	err = s.db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": oid},
		options.FindOne().SetProjection(bson.M{"password": 0}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account %s: %w", id, err)
	}
	return &domain.Account{
		Identity: domain.Identity{ID: domain.UserID(doc.ID.Hex()), DisplayName: doc.Username},
		Active:   doc.IsActive,
	}, nil
}
