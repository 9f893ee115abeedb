package memory

import (
	"time"

	"github.com/dkeye/peerchat/internal/domain"
)

const defaultMaxMembers = 100

// DefaultRooms are the rooms a fresh development store starts with.
func DefaultRooms() []*domain.Room {
	return []*domain.Room{
		{
			ID:          "general-support",
			Name:        "General Support",
			Description: "A safe space for general mental health discussions and peer support.",
			Category:    "support",
			IsPublic:    true,
			Rules: []string{
				"Be respectful and kind to all members",
				"No judgment or discrimination",
				"Keep conversations supportive",
				"Respect privacy and confidentiality",
			},
			Tags: []string{"support", "community", "mental-health"},
		},
		{
			ID:          "anxiety-stress",
			Name:        "Anxiety & Stress Management",
			Description: "Connect with others managing anxiety and stress. Share coping strategies and resources.",
			Category:    "wellness",
			IsPublic:    true,
			Tags:        []string{"anxiety", "stress", "coping", "wellness"},
		},
		{
			ID:          "mindfulness",
			Name:        "Mindfulness & Meditation",
			Description: "Explore mindfulness practices together and share meditation experiences.",
			Category:    "mindfulness",
			IsPublic:    true,
			Tags:        []string{"mindfulness", "meditation"},
		},
		{
			ID:          "daily-checkins",
			Name:        "Daily Check-ins",
			Description: "Share how you are doing today and support others in their daily journey.",
			Category:    "general",
			IsPublic:    true,
			Settings:    domain.RoomSettings{SlowMode: 30 * time.Second},
		},
		{
			ID:          "therapy-support",
			Name:        "Therapy & Professional Support",
			Description: "Discuss therapy experiences and finding professional help.",
			Category:    "therapy",
			IsPublic:    true,
		},
		{
			ID:          "peer-support-circle",
			Name:        "Peer Support Circle",
			Description: "A close-knit circle for ongoing peer support.",
			Category:    "peer-support",
			IsPublic:    true,
		},
	}
}

// Seed loads rooms and accounts. Seeded rooms are active; earlier rooms in
// the list get the more recent activity so listings keep the seed order.
func (s *Store) Seed(rooms []*domain.Room, accounts []*domain.Account) {
	now := time.Now()
	for i, room := range rooms {
		cp := *room
		cp.IsActive = true
		if cp.MaxMembers == 0 {
			cp.MaxMembers = defaultMaxMembers
		}
		if cp.LastActivity.IsZero() {
			cp.LastActivity = now.Add(-time.Duration(i) * time.Minute)
		}
		s.PutRoom(&cp)
	}
	for _, acc := range accounts {
		s.PutAccount(acc)
	}
}
