package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/dkeye/peerchat/internal/domain"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
)

// SeedRooms inserts rooms when the rooms collection is empty. Ids of the
// given rooms are ignored; MongoDB assigns them.
func (s *Store) SeedRooms(ctx context.Context, rooms []*domain.Room) error {
	ctx, cancel := s.op(ctx)
	defer cancel()

	coll := s.db.Collection(roomsCollection)
	n, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("count rooms: %w", err)
	}
	if n > 0 || len(rooms) == 0 {
		return nil
	}
	now := time.Now()
	docs := make([]any, 0, len(rooms))
	for i, r := range rooms {
		maxMembers := r.MaxMembers
		if maxMembers == 0 {
			maxMembers = 100
		}
		docs = append(docs, roomDoc{
			Name:         r.Name,
			Description:  r.Description,
			Category:     r.Category,
			IsPublic:     r.IsPublic,
			MaxMembers:   maxMembers,
			Rules:        r.Rules,
			Tags:         r.Tags,
			LastActivity: now.Add(-time.Duration(i) * time.Minute),
			IsActive:     true,
			Settings:     roomSettingsDoc{SlowMode: int(r.Settings.SlowMode / time.Second)},
		})
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("seed rooms: %w", err)
	}
	log.Info().Str("module", "store.mongo").Int("rooms", len(docs)).Msg("seeded rooms")
	return nil
}
