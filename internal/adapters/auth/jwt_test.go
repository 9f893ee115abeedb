package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dkeye/peerchat/internal/core"
	"github.com/dkeye/peerchat/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type accounts map[domain.UserID]*domain.Account

func (a accounts) FindAccount(_ context.Context, id domain.UserID) (*domain.Account, error) {
	if id == "broken" {
		return nil, errors.New("store down")
	}
	acc, ok := a[id]
	if !ok {
		return nil, core.ErrAccountNotFound
	}
	return acc, nil
}

func newVerifier() *Verifier {
	return NewVerifier(Config{Secret: "test-secret", Issuer: "peerchat"}, accounts{
		"u1": {Identity: domain.Identity{ID: "u1", DisplayName: "alice"}, Active: true},
		"u2": {Identity: domain.Identity{ID: "u2", DisplayName: "bob"}, Active: false},
	})
}

func sign(t *testing.T, secret string, method jwt.SigningMethod, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestVerifier_Verify(t *testing.T) {
	v := newVerifier()
	valid, err := v.Issue("u1", time.Hour)
	require.NoError(t, err)
	deactivated, err := v.Issue("u2", time.Hour)
	require.NoError(t, err)
	unknown, err := v.Issue("ghost", time.Hour)
	require.NoError(t, err)
	broken, err := v.Issue("broken", time.Hour)
	require.NoError(t, err)
	expired, err := v.Issue("u1", -time.Minute)
	require.NoError(t, err)

	wrongIssuer := sign(t, "test-secret", jwt.SigningMethodHS256, Claims{
		UserID:           "u1",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else"},
	})
	wrongSecret := sign(t, "other", jwt.SigningMethodHS256, Claims{
		UserID:           "u1",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "peerchat"},
	})
	wrongAlg := sign(t, "test-secret", jwt.SigningMethodHS512, Claims{
		UserID:           "u1",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "peerchat"},
	})
	noUser := sign(t, "test-secret", jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "peerchat"},
	})

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"missing", "", ErrMissingCredential},
		{"malformed", "not.a.jwt", ErrInvalidCredential},
		{"wrong secret", wrongSecret, ErrInvalidCredential},
		{"wrong algorithm", wrongAlg, ErrInvalidCredential},
		{"wrong issuer", wrongIssuer, ErrInvalidCredential},
		{"no user claim", noUser, ErrInvalidCredential},
		{"expired", expired, ErrCredentialExpired},
		{"unknown identity", unknown, ErrIdentityNotFound},
		{"deactivated", deactivated, ErrIdentityDeactivated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tt.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrAuthentication)
		})
	}

	t.Run("store failure is not an auth failure", func(t *testing.T) {
		_, err := v.Verify(context.Background(), broken)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrAuthentication)
	})

	t.Run("valid", func(t *testing.T) {
		id, err := v.Verify(context.Background(), valid)
		require.NoError(t, err)
		assert.Equal(t, &domain.Identity{ID: "u1", DisplayName: "alice"}, id)
	})
}

func TestCredentialFrom(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		header string
		want   string
	}{
		{"bearer header", "/api/ws", "Bearer abc", "abc"},
		{"query param", "/api/ws?token=xyz", "", "xyz"},
		{"header wins", "/api/ws?token=xyz", "Bearer abc", "abc"},
		{"non bearer scheme", "/api/ws?token=xyz", "Basic abc", ""},
		{"none", "/api/ws", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, CredentialFrom(r))
		})
	}
}
