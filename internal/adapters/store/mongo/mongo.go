// Package mongo keeps rooms, messages and accounts in MongoDB using the
// collection layout of the chat backend (rooms, messages, users).
package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	roomsCollection    = "rooms"
	messagesCollection = "messages"
	usersCollection    = "users"
)

type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	OpTimeout      time.Duration
}

// Store implements core.RoomDirectory and core.AccountStore.
type Store struct {
	client    *mongo.Client
	db        *mongo.Database
	opTimeout time.Duration
}

func Connect(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = 5 * time.Second
	}
	opts := options.Client().ApplyURI(cfg.URI).SetConnectTimeout(cfg.ConnectTimeout)

	cctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	client, err := mongo.Connect(cctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	log.Info().Str("module", "store.mongo").Str("database", cfg.Database).Msg("connected")
	return &Store{
		client:    client,
		db:        client.Database(cfg.Database),
		opTimeout: cfg.OpTimeout,
	}, nil
}

// EnsureIndexes creates the indexes the read paths rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := s.db.Collection(messagesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "room", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "sender", Value: 1}, {Key: "timestamp", Value: -1}}},
	}); err != nil {
		return fmt.Errorf("create message indexes: %w", err)
	}
	if _, err := s.db.Collection(roomsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "isPublic", Value: 1}, {Key: "isActive", Value: 1}}},
		{Keys: bson.D{{Key: "lastActivity", Value: -1}}},
	}); err != nil {
		return fmt.Errorf("create room indexes: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.op(ctx)
	defer cancel()
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongo: %w", err)
	}
	log.Info().Str("module", "store.mongo").Msg("disconnected")
	return nil
}

func (s *Store) op(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}
