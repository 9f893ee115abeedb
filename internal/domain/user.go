// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	MaxUserIDLen      = 64
	MaxDisplayNameLen = 64
)

var (
	ErrDisplayNameTooLong = errors.New("display name too long")
	ErrDisplayNameEmpty   = errors.New("display name empty")
	ErrUserIDEmpty        = errors.New("user id empty")
)

type UserID string

// Identity is who a connection authenticated as. It never changes while the
// connection lives.
type Identity struct {
	ID          UserID `json:"id"`
	DisplayName string `json:"username"`
}

// NewIdentity is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewIdentity(id UserID, displayName string) (*Identity, error) {
	if id == "" {
		return nil, ErrUserIDEmpty
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, ErrDisplayNameEmpty
	}
	if utf8.RuneCountInString(displayName) > MaxDisplayNameLen {
		return nil, ErrDisplayNameTooLong
	}
	return &Identity{ID: id, DisplayName: displayName}, nil
}

// Account is the stored user record behind an identity.
type Account struct {
	Identity
	Active bool `json:"isActive"`
}
