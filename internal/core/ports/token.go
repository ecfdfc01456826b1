package ports

import (
	"context"
	"time"
)

// Credential is what a verified bearer token proves about a request.
type Credential struct {
	UserID    string
	TokenID   string
	ExpiresAt time.Time
}

// TokenService mints and checks bearer tokens. Verify returns
// domain.ErrUnauthenticated for every kind of bad token.
type TokenService interface {
	Issue(userID string) (string, error)
	Verify(ctx context.Context, token string) (*Credential, error)
	Revoke(ctx context.Context, cred *Credential) error
}

// TokenDenylist remembers revoked token ids until they would have expired
// anyway.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
