package mongo

import (
	"time"

	"github.com/dkeye/peerchat/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type roomSettingsDoc struct {
	SlowMode int `bson:"slowMode"`
}

type roomDoc struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	Name         string               `bson:"name"`
	Description  string               `bson:"description"`
	Category     string               `bson:"category"`
	IsPublic     bool                 `bson:"isPublic"`
	MaxMembers   int                  `bson:"maxMembers"`
	Members      []primitive.ObjectID `bson:"members"`
	Rules        []string             `bson:"rules,omitempty"`
	Tags         []string             `bson:"tags,omitempty"`
	LastMessage  string               `bson:"lastMessage"`
	LastActivity time.Time            `bson:"lastActivity"`
	IsActive     bool                 `bson:"isActive"`
	Settings     roomSettingsDoc      `bson:"settings"`
}

func (d *roomDoc) toDomain() *domain.Room {
	members := make([]domain.UserID, 0, len(d.Members))
	for _, m := range d.Members {
		members = append(members, domain.UserID(m.Hex()))
	}
	return &domain.Room{
		ID:           domain.RoomID(d.ID.Hex()),
		Name:         d.Name,
		Description:  d.Description,
		Category:     d.Category,
		IsPublic:     d.IsPublic,
		IsActive:     d.IsActive,
		MaxMembers:   d.MaxMembers,
		Members:      members,
		Tags:         d.Tags,
		Rules:        d.Rules,
		LastMessage:  d.LastMessage,
		LastActivity: d.LastActivity,
		Settings:     domain.RoomSettings{SlowMode: time.Duration(d.Settings.SlowMode) * time.Second},
	}
}

type messageDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Content   string             `bson:"content"`
	Sender    primitive.ObjectID `bson:"sender"`
	Room      primitive.ObjectID `bson:"room"`
	Timestamp time.Time          `bson:"timestamp"`
	Edited    bool               `bson:"edited"`
	EditedAt  *time.Time         `bson:"editedAt,omitempty"`
	Type      string             `bson:"messageType"`
	IsDeleted bool               `bson:"isDeleted"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

// messageView is a history row joined with its sender.
type messageView struct {
	messageDoc `bson:",inline"`
	SenderDoc  userDoc `bson:"senderDoc"`
}

func (v *messageView) toDomain() *domain.Message {
	return &domain.Message{
		ID:         domain.MessageID(v.ID.Hex()),
		Content:    v.Content,
		SenderID:   domain.UserID(v.Sender.Hex()),
		SenderName: v.SenderDoc.Username,
		RoomID:     domain.RoomID(v.Room.Hex()),
		Timestamp:  v.Timestamp,
		Edited:     v.Edited,
		EditedAt:   v.EditedAt,
	}
}

type userDoc struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Username string             `bson:"username"`
	IsActive bool               `bson:"isActive"`
}
