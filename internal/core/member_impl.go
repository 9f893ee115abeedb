package core

import "github.com/dkeye/peerchat/internal/domain"

// memberSession implements MemberSession by pairing meta + transport.
type memberSession struct {
	id     SessionID
	meta   *domain.Member
	signal SignalConnection
}

func NewMemberSession(id SessionID, meta *domain.Member, signal SignalConnection) MemberSession {
	return &memberSession{id: id, meta: meta, signal: signal}
}

func (m *memberSession) ID() SessionID            { return m.id }
func (m *memberSession) Meta() *domain.Member     { return m.meta }
func (m *memberSession) Signal() SignalConnection { return m.signal }
