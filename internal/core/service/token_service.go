package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/devconnector/devconnector-api/internal/core/domain"
	"github.com/devconnector/devconnector-api/internal/core/ports"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 10 * time.Hour

type tokenUser struct {
	ID string `json:"id"`
}

// tokenClaims is the signed payload: {"user":{"id":...}} plus registered claims.
type tokenClaims struct {
	User tokenUser `json:"user"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 bearer tokens.
type TokenService struct {
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	denylist ports.TokenDenylist
	log      zerolog.Logger
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// WithDenylist enables revocation checks against d.
func WithDenylist(d ports.TokenDenylist) TokenOption {
	return func(s *TokenService) { s.denylist = d }
}

func NewTokenService(secret string, ttl time.Duration, log zerolog.Logger, opts ...TokenOption) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	s := &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TokenService) Issue(userID string) (string, error) {
	now := s.now()
	claims := tokenClaims{
		User: tokenUser{ID: userID},
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify never tells the caller why a token was rejected; the reason is only
// logged at debug level.
func (s *TokenService) Verify(ctx context.Context, token string) (*ports.Credential, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	var claims tokenClaims
	tkn, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tkn.Valid || claims.User.ID == "" {
		s.log.Debug().Err(err).Msg("token rejected")
		return nil, domain.ErrUnauthenticated
	}

	cred := &ports.Credential{
		UserID:    claims.User.ID,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}

	if s.denylist != nil && cred.TokenID != "" {
		revoked, err := s.denylist.IsRevoked(ctx, cred.TokenID)
		if err != nil {
			// Fail closed: an unreachable denylist must not resurrect revoked tokens.
			s.log.Error().Err(err).Msg("token denylist lookup failed")
			return nil, domain.ErrUnauthenticated
		}
		if revoked {
			return nil, domain.ErrUnauthenticated
		}
	}
	return cred, nil
}

// Revoke denylists cred until its natural expiry. Without a denylist tokens
// cannot be revoked and Revoke is a no-op.
func (s *TokenService) Revoke(ctx context.Context, cred *ports.Credential) error {
	if s.denylist == nil || cred == nil || cred.TokenID == "" {
		return nil
	}
	ttl := cred.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.denylist.Revoke(ctx, cred.TokenID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
