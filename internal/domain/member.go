package domain

import "time"

// Member represents a connection's participation meta.
// No transport or lifecycle logic here.
type Member struct {
	Identity    *Identity
	ConnectedAt time.Time
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
func NewMember(identity *Identity) *Member {
	return &Member{Identity: identity, ConnectedAt: time.Now()}
}
