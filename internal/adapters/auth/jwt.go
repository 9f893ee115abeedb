// Package auth verifies bearer credentials and resolves them to identities.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dkeye/peerchat/internal/core"
	"github.com/dkeye/peerchat/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrAuthentication      = errors.New("authentication error")
	ErrMissingCredential   = fmt.Errorf("%w: no token provided", ErrAuthentication)
	ErrInvalidCredential   = fmt.Errorf("%w: invalid token", ErrAuthentication)
	ErrCredentialExpired   = fmt.Errorf("%w: token expired", ErrAuthentication)
	ErrIdentityNotFound    = fmt.Errorf("%w: user not found", ErrAuthentication)
	ErrIdentityDeactivated = fmt.Errorf("%w: account is deactivated", ErrAuthentication)
)

type Config struct {
	Secret string
	Issuer string
}

// Claims carries the user id the way the account service signs it.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Verifier implements core.IdentityVerifier over HS256 tokens and an
// account lookup.
type Verifier struct {
	cfg      Config
	accounts core.AccountStore
}

var _ core.IdentityVerifier = (*Verifier)(nil)

func NewVerifier(cfg Config, accounts core.AccountStore) *Verifier {
	return &Verifier{cfg: cfg, accounts: accounts}
}

func (v *Verifier) Verify(ctx context.Context, credential string) (*domain.Identity, error) {
	if credential == "" {
		return nil, ErrMissingCredential
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name})}
	if v.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.cfg.Issuer))
	}
	token, err := jwt.ParseWithClaims(credential, &Claims{}, func(*jwt.Token) (any, error) {
		return []byte(v.cfg.Secret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrCredentialExpired
		}
		return nil, ErrInvalidCredential
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidCredential
	}

	acc, err := v.accounts.FindAccount(ctx, domain.UserID(claims.UserID))
	if errors.Is(err, core.ErrAccountNotFound) {
		return nil, ErrIdentityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if !acc.Active {
		return nil, ErrIdentityDeactivated
	}
	return domain.NewIdentity(acc.ID, acc.DisplayName)
}

// Issue signs a token for uid. Used by development tooling and tests.
func (v *Verifier) Issue(uid domain.UserID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: string(uid),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.cfg.Issuer,
			Subject:   string(uid),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(v.cfg.Secret))
}

// CredentialFrom reads the bearer token from the Authorization header or,
// for browsers that cannot set headers on an upgrade, the token query param.
func CredentialFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}
